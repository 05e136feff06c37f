package rankctl

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/rankwatch/internal/adapters/notifier"
	"github.com/okian/rankwatch/internal/adapters/repository"
	service "github.com/okian/rankwatch/internal/app"
	"github.com/okian/rankwatch/internal/bootstrap"
	"github.com/okian/rankwatch/internal/domain/model"
	"github.com/okian/rankwatch/pkg/logger"
)

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Prints the persisted snapshot.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.load(ctx)
			if err != nil {
				return err
			}
			st, err := bootstrap.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			rec, err := st.Load(ctx)
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "no snapshot persisted yet")
				return nil
			}
			if err != nil {
				return err
			}
			writeSnapshot(cmd.OutOrStdout(), rec.Snapshot, rec.ObservedAt)
			return nil
		},
	}
}

func newFetchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetches the current snapshot without persisting or notifying.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.load(ctx)
			if err != nil {
				return err
			}
			snap, err := bootstrap.NewFetcher(cfg).Fetch(ctx)
			if err != nil {
				return err
			}
			writeSnapshot(cmd.OutOrStdout(), snap, time.Time{})
			return nil
		},
	}
}

func newOnceCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Runs one full cycle: fetch, compare, persist and notify on change.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := opts.load(ctx)
			if err != nil {
				return err
			}
			c, err := bootstrap.Build(ctx, cfg, logger.New(cmd.ErrOrStderr()).Named("rankctl"))
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			res := c.Service.RunCycle(ctx)
			writeCycle(cmd.OutOrStdout(), res)
			if res.Outcome == service.OutcomeFetchFailed || res.Outcome == service.OutcomeStoreUnavailable || res.Outcome == service.OutcomePanicked {
				return fmt.Errorf("cycle %s: %s", res.CycleID, res.Outcome)
			}
			return nil
		},
	}
}

func writeSnapshot(w io.Writer, s model.Snapshot, observedAt time.Time) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Rank", s.Rank},
		{"League Points", s.LeaguePoints},
		{"Wins", s.Wins},
		{"Losses", s.Losses},
		{"Total Games", s.TotalGames},
		{"Win Rate", fmt.Sprintf("%.2f%%", s.WinRatePercent)},
		{"Last Game", fmt.Sprintf("%s %s", s.LastGameResult, notifier.Marker(s.LastGameResult))},
		{"Session Playtime", s.SessionPlaytime},
	})
	if !observedAt.IsZero() {
		t.AppendRow(table.Row{"Observed At", observedAt.UTC().Format(time.RFC3339)})
	}
	t.Render()
}

func writeCycle(w io.Writer, res service.CycleResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Cycle", "Value"})
	t.AppendRows([]table.Row{
		{"ID", res.CycleID},
		{"Outcome", string(res.Outcome)},
		{"Baseline", string(res.Baseline)},
		{"Changed", strings.Join(res.Changed, ", ")},
		{"Persisted", res.Persisted()},
		{"Notified", res.Notified()},
		{"Duration", res.Duration.Round(time.Millisecond).String()},
	})
	for _, e := range []struct {
		name string
		err  error
	}{
		{"Fetch Error", res.FetchErr},
		{"Load Error", res.LoadErr},
		{"Save Error", res.SaveErr},
		{"Notify Error", res.NotifyErr},
	} {
		if e.err != nil {
			t.AppendRow(table.Row{e.name, e.err.Error()})
		}
	}
	if res.Panic != "" {
		t.AppendRow(table.Row{"Panic", res.Panic})
	}
	t.Render()
}
