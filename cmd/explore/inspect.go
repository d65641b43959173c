package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/loader"
	ioloader "github.com/TomasH60/semantic-blockchain/pkg/loader/io"
)

type inspectOptions struct {
	root       string
	ontology   string
	dataset    string
	instances  []string
	format     string
	search     string
	clicks     []string
	accumulate bool
	output     string
	noColor    bool
}

func inspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load files and print the resulting view",
		Example: `  explore inspect --ontology tron.owl --instances blocks.ttl
  explore inspect --dataset dump.nt --search transfer --output yaml
  explore inspect --ontology tron.owl --instances a.ttl --click http://ex.org/tx1 --accumulate --click http://ex.org/tx2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			session, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := opts.interact(session); err != nil {
				return err
			}
			return writeView(cmd.OutOrStdout(), opts.output, session.View(), session.Stats(), opts.noColor)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.root, "root", "", "Directory file paths are resolved in")
	f.StringVar(&opts.ontology, "ontology", "", "Ontology file")
	f.StringVar(&opts.dataset, "dataset", "", "Standalone dataset file")
	f.StringSliceVar(&opts.instances, "instances", nil, "Instance dumps merged after the ontology, in order")
	f.StringVar(&opts.format, "format", "", "Input format (turtle, ntriples, rdfxml); derived from extensions when empty")
	f.StringVar(&opts.search, "search", "", "Filter the view by label")
	f.StringSliceVar(&opts.clicks, "click", nil, "Node IDs to click, in order")
	f.BoolVar(&opts.accumulate, "accumulate", false, "Accumulate clicked neighborhoods")
	f.StringVarP(&opts.output, "output", "o", "text", "Output format: text, json or yaml")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	return cmd
}

func (o *inspectOptions) validate() error {
	switch {
	case o.ontology == "" && o.dataset == "":
		return fmt.Errorf("one of --ontology or --dataset is required")
	case o.ontology != "" && o.dataset != "":
		return fmt.Errorf("--ontology and --dataset are mutually exclusive")
	case o.dataset != "" && len(o.instances) > 0:
		return fmt.Errorf("--instances requires --ontology")
	}
	switch o.output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
	return nil
}

func (o *inspectOptions) steps() ([]loader.Step, error) {
	l := ioloader.NewIOSourceLoader(o.root)

	var steps []loader.Step
	add := func(path string, op explorer.Operation) error {
		file, err := loader.NewSourceFile(loader.NewSourceFileParams{Path: path, Format: o.format, Loader: l})
		if err != nil {
			return err
		}
		steps = append(steps, loader.Step{File: file, Operation: op, PreserveView: true})
		return nil
	}

	if o.ontology != "" {
		if err := add(o.ontology, explorer.OpOntology); err != nil {
			return nil, err
		}
	} else if err := add(o.dataset, explorer.OpDataset); err != nil {
		return nil, err
	}
	for _, path := range o.instances {
		if err := add(path, explorer.OpInstances); err != nil {
			return nil, err
		}
	}
	return steps, nil
}

func (o *inspectOptions) load(cmd *cobra.Command) (*explorer.Session, error) {
	steps, err := o.steps()
	if err != nil {
		return nil, err
	}
	session := explorer.New()
	if _, err := loader.ApplyAll(cmd.Context(), session, steps, loader.DefaultParallelFiles); err != nil {
		return nil, err
	}
	return session, nil
}

func (o *inspectOptions) interact(session *explorer.Session) error {
	if o.search != "" {
		session.Search(o.search)
	}
	session.SetAccumulate(o.accumulate)
	for _, id := range o.clicks {
		if _, ok := session.Click(id); !ok {
			return fmt.Errorf("unknown node %q", id)
		}
	}
	return nil
}
