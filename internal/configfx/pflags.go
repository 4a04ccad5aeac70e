package configfx

import (
	"os"

	"github.com/spf13/pflag"
)

func PFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)

	fs.StringP("config", "c", "", "Config file")

	fs.Usage = func() {
		os.Stderr.WriteString("Usage: filebutler [flags] <route|backup|rotate|upload|health|run|schedule> [kind]\n\n")
		fs.PrintDefaults()
	}

	err := fs.Parse(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	return fs
}
