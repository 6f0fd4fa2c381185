package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kekexiaoai/healthdetail/pkg/dms"
	"github.com/kekexiaoai/healthdetail/pkg/element"
	"github.com/kekexiaoai/healthdetail/pkg/inspection"
	"github.com/kekexiaoai/healthdetail/pkg/prom"
)

const (
	backendDMS        = "dms"
	backendPrometheus = "prometheus"
)

func loadDataSource(opts *options) (*inspection.DataSource, error) {
	if opts.configPath == "" {
		return inspection.DefaultDataSource(), nil
	}
	return inspection.ParseDataSourceFile(opts.configPath)
}

// buildPipeline wires the configured backend into a pipeline. reg may be nil.
func buildPipeline(opts *options, reg prometheus.Registerer) (*inspection.Pipeline, error) {
	ds, err := loadDataSource(opts)
	if err != nil {
		return nil, err
	}

	var (
		inventory element.Inventory
		tables    inspection.TableSource
	)
	switch opts.backend {
	case backendDMS:
		client := dms.NewClient(dms.Config{
			URL:         opts.dmsURL,
			AccessToken: opts.dmsToken,
			Timeout:     opts.timeout,
			Insecure:    opts.insecure,
		})
		inventory, tables = client, client
	case backendPrometheus:
		client, err := prom.NewClient(opts.prometheusURL, prom.WithTimeout(opts.timeout))
		if err != nil {
			return nil, fmt.Errorf("create prometheus client: %w", err)
		}
		inventory, tables = prom.NewInventory(client), prom.NewTableSource(client, opts.cellMetric)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", opts.backend, backendDMS, backendPrometheus)
	}

	pipelineOpts := []inspection.PipelineOption{}
	if reg != nil {
		pipelineOpts = append(pipelineOpts, inspection.WithMetrics(inspection.NewMetrics(reg)))
	}
	return inspection.NewPipeline(ds, element.NewResolver(inventory), tables, pipelineOpts...), nil
}
