// Command replicate is a small CLI over the client library: run a model
// synchronously, inspect and cancel predictions and trainings, and look
// up models and collections.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/mlship/replicate-go/pkg/config"
	"github.com/mlship/replicate-go/pkg/replicate"
)

var nocontext = context.Background()

func main() {
	app := kingpin.New("replicate", "typed client for the Replicate API")

	envFile := app.Flag("env-file", "load environment variables from a file").Default(".env").String()
	debug := app.Flag("debug", "enable debug logging").Bool()

	app.PreAction(func(*kingpin.ParseContext) error {
		// Missing env files are fine; explicit ones that fail to parse
		// are not worth failing the command over either.
		godotenv.Load(*envFile)
		if *debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	})

	registerRun(app)
	registerPrediction(app)
	registerModel(app)
	registerTraining(app)
	registerCollection(app)

	app.Version(config.Version)
	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// newClient builds the library client, exiting on a missing token. The
// fatal exit lives here at the process boundary, not in the library.
func newClient() *replicate.Replicate {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.WithError(err).Fatalln("cannot load configuration")
	}
	rep, err := replicate.New(cfg)
	if err != nil {
		logrus.WithError(err).Fatalln("cannot create client")
	}
	return rep
}
