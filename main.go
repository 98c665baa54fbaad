package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/pantomime/internal/pantomime/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	if err := pantomime(); err != nil {
		logrus.Fatal(err)
	}
}

func pantomime() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}
