package cli

import (
	"fmt"
	"os"

	"github.com/clinicore/intake/internal/cache"
	"github.com/clinicore/intake/internal/engine"
	"github.com/clinicore/intake/internal/llm"
	"github.com/clinicore/intake/internal/model"
	"github.com/clinicore/intake/internal/store"
)

// openEngine wires stores, the optional model extractor and the engine
// from configuration. The returned cleanup closes the stores.
func openEngine(cfg *model.Config) (*engine.Engine, func(), error) {
	stores, err := store.OpenAll(cfg.Stores)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.CloseAll(stores); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: closing stores: %v\n", err)
		}
	}

	if cfg.Cache.Enabled {
		c := cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		for name, s := range stores {
			stores[name] = store.NewCachedStore(s, c, cfg.Cache.TTL)
		}
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		// A misconfigured oracle disables model extraction; it never
		// blocks the deterministic path.
		fmt.Fprintf(os.Stderr, "Warning: model extractor disabled: %v\n", err)
		provider = nil
	}
	extractor := llm.NewExtractor(provider, llm.ConfigFromModel(cfg.LLM), cfg.Output.Verbose)

	eng, err := engine.New(cfg, stores, extractor)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}
