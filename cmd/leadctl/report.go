package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-leadboard/components/leads"
)

type filterFlags struct {
	Search  string `help:"Case-insensitive substring matched against name and email."`
	Status  string `default:"All" help:"Status filter (All, New, Contacted, Qualified, Lost)."`
	Dataset string `type:"path" help:"Dataset file overriding dataset.path from config."`
}

func (f filterFlags) criteria() (leads.FilterCriteria, error) {
	criteria := leads.FilterCriteria{SearchText: f.Search, Status: f.Status}
	if err := criteria.Validate(); err != nil {
		return leads.FilterCriteria{}, err
	}
	criteria.Status = criteria.StatusFilter()
	return criteria, nil
}

// filtered loads the dataset and applies the flags.
func (f filterFlags) filtered(cfg Config) ([]leads.Lead, leads.FilterCriteria, error) {
	criteria, err := f.criteria()
	if err != nil {
		return nil, leads.FilterCriteria{}, err
	}
	datasetCfg := cfg.Dataset
	if f.Dataset != "" {
		datasetCfg.Path = f.Dataset
	}
	doc, err := datasetCfg.Load()
	if err != nil {
		return nil, leads.FilterCriteria{}, err
	}
	return leads.ApplyFilter(doc.Leads, criteria), criteria, nil
}

type exportCmd struct {
	Filter filterFlags `embed:""`
	Out    string      `type:"path" help:"Output file (defaults to the report filename in the working directory)."`
}

func (c *exportCmd) Run(rt *runtime) error {
	records, _, err := c.Filter.filtered(rt.cfg)
	if err != nil {
		return err
	}
	result, err := leads.ExportLeads(records)
	if err != nil {
		return err
	}
	if result.Empty() {
		fmt.Fprintln(rt.out, result.Notice.Message)
		return nil
	}
	path := c.Out
	if path == "" {
		path = result.Filename
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("leadctl: mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, result.Content, 0o644); err != nil {
		return fmt.Errorf("leadctl: write export: %w", err)
	}
	fmt.Fprintf(rt.out, "%s (%s)\n", result.Notice.Message, path)
	return nil
}

type summaryCmd struct {
	Filter filterFlags `embed:""`
	Format string      `enum:"yaml,json" default:"yaml" help:"Output format (yaml or json)."`
}

type summaryReport struct {
	Filter   leads.FilterCriteria  `json:"filter" yaml:"filter"`
	KPIs     leads.KPISummary      `json:"kpis" yaml:"kpis"`
	Pipeline []leads.StatusDatum   `json:"pipeline" yaml:"pipeline"`
	Agents   []leads.AgentDatum    `json:"agents" yaml:"agents"`
	Velocity []leads.ActivityDatum `json:"velocity" yaml:"velocity"`
}

func (c *summaryCmd) Run(rt *runtime) error {
	records, criteria, err := c.Filter.filtered(rt.cfg)
	if err != nil {
		return err
	}
	report := summaryReport{
		Filter:   criteria,
		KPIs:     leads.Summarize(records),
		Pipeline: leads.GroupByStatus(records),
		Agents:   leads.SumValueByAgent(records),
		Velocity: leads.BucketActivityByDay(records),
	}
	switch strings.ToLower(c.Format) {
	case "json":
		encoder := json.NewEncoder(rt.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	default:
		encoder := yaml.NewEncoder(rt.out)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(report)
	}
}
