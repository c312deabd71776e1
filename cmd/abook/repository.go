package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/spachava753/abook/internal/engine"
	"github.com/spachava753/abook/internal/store/abdb"
	"github.com/spachava753/abook/internal/store/jxa"
)

// openEngine builds the query engine over the configured backend. The
// returned close func releases backend resources and is safe to call for
// every backend.
func openEngine() (*engine.Engine, func() error, error) {
	log, err := newLoggerFromViper()
	if err != nil {
		return nil, nil, err
	}

	backend := strings.ToLower(strings.TrimSpace(viper.GetString("backend")))
	switch backend {
	case "", "jxa":
		return engine.New(jxa.New(log)), func() error { return nil }, nil
	case "database", "db":
		store, err := abdb.Open(viper.GetString("database.path"), log)
		if err != nil {
			return nil, nil, err
		}
		return engine.New(store), store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (expected jxa or database)", backend)
	}
}
