package commands

import (
	"context"
	"fmt"
	"log/slog"

	"conform/internal/discovery"
	"conform/internal/domain"
	"conform/internal/execution"
	"conform/internal/expect"
	"conform/internal/loader"
	"conform/internal/oracle"
	"conform/internal/suite"
)

// treeLoader resolves source arguments and registers them into a fresh
// realm.
type treeLoader struct {
	scanner *discovery.Scanner
	logger  *slog.Logger
}

func newTreeLoader(scanner *discovery.Scanner, logger *slog.Logger) *treeLoader {
	return &treeLoader{scanner: scanner, logger: logger}
}

// Load returns the registered tree and the number of sources it came from.
func (t *treeLoader) Load(ctx context.Context, args []string) (*domain.Group, int, error) {
	sources, err := t.scanner.Resolve(args)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve sources: %w", err)
	}

	realm, err := oracle.New()
	if err != nil {
		return nil, 0, fmt.Errorf("create oracle: %w", err)
	}
	if err := expect.Install(realm); err != nil {
		return nil, 0, fmt.Errorf("install expect: %w", err)
	}

	registry := suite.New()
	l, err := loader.New(realm, registry, t.logger)
	if err != nil {
		return nil, 0, err
	}
	if err := l.LoadFiles(ctx, sources); err != nil {
		return nil, 0, err
	}

	root, err := registry.Root()
	if err != nil {
		return nil, 0, err
	}
	t.logger.Debug("sources loaded", "sources", len(sources), "examples", root.CountExamples())
	return root, len(sources), nil
}

// pruneTree copies the part of g that selector admits: matching examples,
// groups holding any of them, and empty groups whose own path matches.
func pruneTree(g *domain.Group, path []string, selector execution.Selector) *domain.Group {
	out := &domain.Group{Name: g.Name}
	for _, child := range g.Children {
		switch {
		case child.Group != nil:
			childPath := append(append([]string{}, path...), child.Group.Name)
			sub := pruneTree(child.Group, childPath, selector)
			if len(sub.Children) > 0 || (len(child.Group.Children) == 0 && selector.Match(childPath)) {
				out.Children = append(out.Children, domain.Node{Group: sub})
			}
		case child.Example != nil:
			full := append(append([]string{}, path...), child.Example.Name)
			if selector.Match(full) {
				out.Children = append(out.Children, child)
			}
		}
	}
	return out
}
