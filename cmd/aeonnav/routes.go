package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/affectively-ai/aeon-nav/pkg/route"
)

func routesCmd() *cobra.Command {
	var (
		manifest string
		match    string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Validate a route manifest and inspect match order",
		Long: `Load a route manifest, validate it, and print the compiled
routes in the order the matcher tries them.

With --match, additionally resolve one path against the table and print
the winning route, its captured parameters, and the session id.

Examples:
  aeonnav routes --manifest routes.json
  aeonnav routes --manifest routes.json --match /docs/api/auth`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(manifest, match)
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", "routes.json", "Route manifest to load")
	cmd.Flags().StringVar(&match, "match", "", "Path to resolve against the table")

	return cmd
}

func runRoutes(manifestPath, matchPath string) error {
	defs, err := route.LoadManifestFile(manifestPath)
	if err != nil {
		return err
	}

	matcher := route.NewMatcher()
	matcher.Reset(defs)

	success("%d routes loaded from %s", matcher.Len(), manifestPath)
	fmt.Println()

	// Patterns lists in match order; align columns for readability.
	width := 0
	for _, p := range matcher.Patterns() {
		if len(p) > width {
			width = len(p)
		}
	}
	byPattern := make(map[string]route.Definition, len(defs))
	for _, d := range defs {
		byPattern[d.Pattern] = d
	}
	for i, p := range matcher.Patterns() {
		def := byPattern[p]
		live := ""
		if def.Live {
			live = "  [live]"
		}
		fmt.Printf("  %2d. %-*s  %s%s\n", i+1, width, p, def.SessionID, live)
	}

	if matchPath == "" {
		return nil
	}

	fmt.Println()
	m, ok := matcher.Match(matchPath)
	if !ok {
		errorMsg("%s does not match any route", matchPath)
		return nil
	}

	success("%s → %s", matchPath, m.Route.Pattern)
	info("session:   %s", m.SessionID)
	info("component: %s", m.Route.ComponentID)
	if len(m.Params) > 0 {
		names := make([]string, 0, len(m.Params))
		for name := range m.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			info("param %s = %q", name, m.Params[name])
		}
	}
	return nil
}
