package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"

	"cardcache/internal/cardcache"
	"cardcache/internal/language"
)

func newTierCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tier <id>...",
		Short: "Show the recency tier of cards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, false, func(_ context.Context, engine *cardcache.Engine) error {
				w := cmd.OutOrStdout()
				rows := make([][]string, 0, len(args))
				for _, id := range args {
					rows = append(rows, []string{id, strconv.Itoa(engine.Tier(id))})
				}
				fmt.Fprintln(w, renderTable(w, []string{"ID", "Tier"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

type showOutput struct {
	Entity cardcache.Entity `json:"entity"`
	Tier   int              `json:"tier"`
	Detail *cardcache.CardC `json:"detail,omitempty"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a cached card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withEngine(cmd, false, func(ctx context.Context, engine *cardcache.Engine) error {
				entity, ok := engine.Reconstruct(id)
				if !ok {
					return fmt.Errorf("card %s is not cached", id)
				}
				result := showOutput{Entity: entity, Tier: engine.Tier(id)}
				detail, found, err := engine.GetDetail(ctx, id)
				if err != nil {
					return fmt.Errorf("load detail: %w", err)
				}
				if found {
					result.Detail = &detail
				}
				if jsonOut {
					return writeJSON(cmd, result)
				}
				renderEntity(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func renderEntity(cmd *cobra.Command, result showOutput) {
	w := cmd.OutOrStdout()
	entity := result.Entity
	title := cases.Title(textlang.English)

	fmt.Fprintf(w, "%s  [%s]  tier %d\n", entity.Name, title.String(string(entity.Kind)), result.Tier)
	fmt.Fprintf(w, "ID: %s   Fetched: %s\n", entity.ID, humanize.Time(msTime(entity.FetchedAt)))

	switch {
	case entity.Monster != nil:
		m := entity.Monster
		fmt.Fprintf(w, "%s / %s / %s %d / ATK %s DEF %s\n",
			m.Attribute, m.Race, title.String(m.LevelType), m.LevelValue, statValue(m.ATK), statValue(m.DEF))
		if len(m.Types) > 0 {
			fmt.Fprintf(w, "Types: %s\n", strings.Join(m.Types, " / "))
		}
	case entity.Effect != nil && entity.Effect.EffectType != "":
		fmt.Fprintf(w, "Effect type: %s\n", entity.Effect.EffectType)
	}

	langs := make([]string, 0, len(entity.Names))
	for lang := range entity.Names {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	rows := make([][]string, 0, len(langs))
	for _, lang := range langs {
		rows = append(rows, []string{language.DisplayName(lang), entity.Names[lang], strconv.Itoa(len(entity.LangImages[lang]))})
	}
	fmt.Fprintln(w, renderTable(w, []string{"Language", "Name", "Images"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))

	if result.Detail != nil {
		fmt.Fprintf(w, "\n%s\n", result.Detail.Text)
	}
}

func newIDsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ids",
		Short: "List cached card ids with their tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, false, func(_ context.Context, engine *cardcache.Engine) error {
				entities := engine.Entities()
				ids := engine.IDs()
				if jsonOut {
					return writeJSON(cmd, ids)
				}
				w := cmd.OutOrStdout()
				rows := make([][]string, 0, len(ids))
				for _, id := range ids {
					name := ""
					if entity, ok := entities[id]; ok {
						name = entity.Name
					}
					rows = append(rows, []string{id, name, strconv.Itoa(engine.Tier(id))})
				}
				fmt.Fprintln(w, renderTable(w, []string{"ID", "Name", "Tier"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Store cards from a JSON array of entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var entities []cardcache.Entity
			if err := json.Unmarshal(data, &entities); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}
			return ctx.withEngine(cmd, true, func(_ context.Context, engine *cardcache.Engine) error {
				var updated, skipped int
				for _, entity := range entities {
					ok, err := engine.SetEntity(entity, force)
					if err != nil {
						return fmt.Errorf("import %s: %w", entity.ID, err)
					}
					if ok {
						updated++
					} else {
						skipped++
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s cards (%s skipped as fresh)\n",
					humanize.Comma(int64(updated)), humanize.Comma(int64(skipped)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rewrite cards even when the cached copy is fresh")
	return cmd
}

func newCollectionCommand(ctx *commandContext) *cobra.Command {
	collectionCmd := &cobra.Command{
		Use:   "collection",
		Short: "Recent collection bookkeeping",
	}

	collectionCmd.AddCommand(&cobra.Command{
		Use:   "open <collection-id> <id>...",
		Short: "Record that a collection was opened",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, true, func(_ context.Context, engine *cardcache.Engine) error {
				if err := engine.RecordCollectionOpened(args[0], args[1:]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded collection %s with %d cards\n", args[0], len(args)-1)
				return nil
			})
		},
	})

	collectionCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recently opened collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, false, func(_ context.Context, engine *cardcache.Engine) error {
				w := cmd.OutOrStdout()
				recent := engine.RecentCollections()
				rows := make([][]string, 0, len(recent))
				for _, entry := range recent {
					rows = append(rows, []string{
						entry.CollectionID,
						strconv.Itoa(len(entry.EntityIDs)),
						humanize.Time(msTime(entry.OpenedAt)),
					})
				}
				fmt.Fprintln(w, renderTable(w, []string{"Collection", "Cards", "Opened"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	})

	return collectionCmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <id>...",
		Short: "Record that cards appeared in a search result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, true, func(_ context.Context, engine *cardcache.Engine) error {
				if err := engine.RecordSearch(args...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded search hit for %d cards\n", len(args))
				return nil
			})
		},
	}
}

func statValue(v int) string {
	if v < 0 {
		return "?"
	}
	return strconv.Itoa(v)
}
