package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kekexiaoai/healthdetail/pkg/api"
	"github.com/kekexiaoai/healthdetail/pkg/inspection"
)

func newQueryCmd(opts *options) *cobra.Command {
	var (
		index  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Fetch the detail rows of one health check once",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPipeline(opts, nil)
			if err != nil {
				return err
			}
			s := inspection.NewSession(p)
			s.OnArgumentsProcessed(index)
			page := s.GetNextPage(cmd.Context())
			log.WithField("reason", s.LastReason()).Debug("query finished")
			return writePage(cmd.OutOrStdout(), page, output)
		},
	}
	cmd.Flags().StringVarP(&index, "index", "i", "", "health check index")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detail table over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			p, err := buildPipeline(opts, reg)
			if err != nil {
				return err
			}
			srv := api.NewServer(listen, api.NewRouter(api.NewController(p), reg))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = srv.Shutdown(context.Background())
			}()

			log.Infof("Listen addr = %s", listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", envOr("HCDETAIL_LISTEN", ":8080"), "listen address")
	return cmd
}

func newWatchCmd(opts *options) *cobra.Command {
	var (
		index  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run a query on the schedule of the data source definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := buildPipeline(opts, nil)
			if err != nil {
				return err
			}
			sched, err := p.DataSource().CronSchedule()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			c := cron.New()
			c.Schedule(sched, cron.FuncJob(func() {
				s := inspection.NewSession(p)
				s.OnArgumentsProcessed(index)
				if err := writePage(out, s.GetNextPage(ctx), output); err != nil {
					log.Errorf("write result: %v", err)
				}
			}))
			c.Start()
			log.Infof("watching index %q on schedule %q", index, p.DataSource().Schedule.Cron)

			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		},
	}
	cmd.Flags().StringVarP(&index, "index", "i", "", "health check index")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

func writePage(w io.Writer, page *inspection.Page, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		names := make([]string, 0, len(page.Columns))
		for _, c := range page.Columns {
			names = append(names, c.Name)
		}
		fmt.Fprintln(tw, strings.Join(names, "\t"))
		for _, row := range page.Rows {
			fmt.Fprintln(tw, strings.Join(row.Cells(), "\t"))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
