package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/mlship/replicate-go/pkg/artifacts"
)

// printJSON writes any API entity as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseInputs turns repeated key=value flags into the input mapping.
// Values that parse as JSON are passed through typed; everything else
// stays a string.
func parseInputs(pairs []string) (map[string]any, error) {
	input := map[string]any{}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("malformed input %q, expected key=value", pair)
		}
		var typed any
		if err := json.Unmarshal([]byte(value), &typed); err == nil {
			input[key] = typed
		} else {
			input[key] = value
		}
	}
	return input, nil
}

type runCommand struct {
	ref     string
	inputs  []string
	saveDir string
}

func (c *runCommand) run(*kingpin.ParseContext) error {
	input, err := parseInputs(c.inputs)
	if err != nil {
		return err
	}

	rep := newClient()
	result, err := rep.Run(nocontext, c.ref, input)
	if err != nil {
		return err
	}

	if c.saveDir != "" {
		path, err := artifacts.NewStore(c.saveDir).Save(result)
		if err != nil {
			return err
		}
		logrus.WithField("path", path).Info("output saved")
	}
	return printJSON(result)
}

func registerRun(app *kingpin.Application) {
	c := new(runCommand)
	cmd := app.Command("run", "run a model and wait for the result").Action(c.run)
	cmd.Arg("version", "model reference as owner/name:version").Required().StringVar(&c.ref)
	cmd.Flag("input", "model input as key=value, repeatable").StringsVar(&c.inputs)
	cmd.Flag("save-dir", "save the output and metadata under this directory").StringVar(&c.saveDir)
}

type predictionCommand struct {
	id string
}

func (c *predictionCommand) get(*kingpin.ParseContext) error {
	p, err := newClient().Predictions.Get(nocontext, c.id)
	if err != nil {
		return err
	}
	return printJSON(p)
}

func (c *predictionCommand) list(*kingpin.ParseContext) error {
	page, err := newClient().Predictions.List(nocontext)
	if err != nil {
		return err
	}
	return printJSON(page)
}

func (c *predictionCommand) cancel(*kingpin.ParseContext) error {
	h, err := newClient().Predictions.Attach(nocontext, c.id)
	if err != nil {
		return err
	}
	if err := h.Cancel(nocontext); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"prediction": h.ID(),
		"status":     h.Status(),
	}).Info("prediction canceled")
	return nil
}

func registerPrediction(app *kingpin.Application) {
	c := new(predictionCommand)
	cmd := app.Command("prediction", "inspect and cancel predictions")

	get := cmd.Command("get", "fetch a prediction by id").Action(c.get)
	get.Arg("id", "prediction id").Required().StringVar(&c.id)

	cmd.Command("list", "list your predictions").Action(c.list)

	cancel := cmd.Command("cancel", "cancel a running prediction").Action(c.cancel)
	cancel.Arg("id", "prediction id").Required().StringVar(&c.id)
}

type modelCommand struct {
	ref       string
	versionID string
}

// splitModelRef expects "owner/name".
func splitModelRef(ref string) (string, string, error) {
	owner, name, found := strings.Cut(ref, "/")
	if !found || owner == "" || name == "" {
		return "", "", fmt.Errorf("malformed model reference %q, expected owner/name", ref)
	}
	return owner, name, nil
}

func (c *modelCommand) get(*kingpin.ParseContext) error {
	owner, name, err := splitModelRef(c.ref)
	if err != nil {
		return err
	}
	m, err := newClient().Models.Get(nocontext, owner, name)
	if err != nil {
		return err
	}
	return printJSON(m)
}

func (c *modelCommand) versions(*kingpin.ParseContext) error {
	owner, name, err := splitModelRef(c.ref)
	if err != nil {
		return err
	}
	rep := newClient()
	if c.versionID != "" {
		v, err := rep.Models.Versions().Get(nocontext, owner, name, c.versionID)
		if err != nil {
			return err
		}
		return printJSON(v)
	}
	page, err := rep.Models.Versions().List(nocontext, owner, name)
	if err != nil {
		return err
	}
	return printJSON(page)
}

func registerModel(app *kingpin.Application) {
	c := new(modelCommand)
	cmd := app.Command("model", "look up models and their versions")

	get := cmd.Command("get", "fetch a model's metadata").Action(c.get)
	get.Arg("model", "model as owner/name").Required().StringVar(&c.ref)

	versions := cmd.Command("versions", "list or fetch a model's versions").Action(c.versions)
	versions.Arg("model", "model as owner/name").Required().StringVar(&c.ref)
	versions.Flag("id", "fetch this single version").StringVar(&c.versionID)
}

type trainingCommand struct {
	id string
}

func (c *trainingCommand) get(*kingpin.ParseContext) error {
	tr, err := newClient().Trainings.Get(nocontext, c.id)
	if err != nil {
		return err
	}
	return printJSON(tr)
}

func (c *trainingCommand) list(*kingpin.ParseContext) error {
	page, err := newClient().Trainings.List(nocontext)
	if err != nil {
		return err
	}
	return printJSON(page)
}

func (c *trainingCommand) cancel(*kingpin.ParseContext) error {
	if err := newClient().Trainings.Cancel(nocontext, c.id); err != nil {
		return err
	}
	logrus.WithField("training", c.id).Info("training canceled")
	return nil
}

func registerTraining(app *kingpin.Application) {
	c := new(trainingCommand)
	cmd := app.Command("training", "inspect and cancel trainings")

	get := cmd.Command("get", "fetch a training by id").Action(c.get)
	get.Arg("id", "training id").Required().StringVar(&c.id)

	cmd.Command("list", "list your trainings").Action(c.list)

	cancel := cmd.Command("cancel", "cancel a running training").Action(c.cancel)
	cancel.Arg("id", "training id").Required().StringVar(&c.id)
}

type collectionCommand struct {
	slug string
}

func (c *collectionCommand) get(*kingpin.ParseContext) error {
	col, err := newClient().Collections.Get(nocontext, c.slug)
	if err != nil {
		return err
	}
	return printJSON(col)
}

func (c *collectionCommand) list(*kingpin.ParseContext) error {
	page, err := newClient().Collections.List(nocontext)
	if err != nil {
		return err
	}
	return printJSON(page)
}

func registerCollection(app *kingpin.Application) {
	c := new(collectionCommand)
	cmd := app.Command("collection", "look up model collections")

	get := cmd.Command("get", "fetch a collection by slug").Action(c.get)
	get.Arg("slug", "collection slug").Required().StringVar(&c.slug)

	cmd.Command("list", "list collections").Action(c.list)
}
