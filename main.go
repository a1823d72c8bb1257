// Jsi is a small interpreter for the good parts of javascript.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"fortio.org/cli"
	"fortio.org/duration"
	"fortio.org/log"
	"fortio.org/struct2env"
	"grol.io/jsi/eval"
	"grol.io/jsi/extensions"
	"grol.io/jsi/repl"
)

func main() {
	os.Exit(Main())
}

type Config struct {
	HistoryFile string
	ModulePath  string
}

var config = Config{}

const envPrefix = "JSI_"

func EnvHelp(w io.Writer) {
	res, _ := struct2env.StructToEnvVars(config)
	str := struct2env.ToShellWithPrefix(envPrefix, res, true)
	fmt.Fprintln(w, "# Jsi environment variables:")
	fmt.Fprint(w, str)
}

func Main() int {
	commandFlag := flag.String("c", "", "command/inline script to run instead of interactive mode")
	showParse := flag.Bool("parse", false, "show the normalized source before running it")
	astOnly := flag.Bool("ast", false, "don't execute, just parse and print the syntax tree as YAML")
	showEval := flag.Bool("eval", false, "show the completion value of each file")
	sharedState := flag.Bool("shared-state", false, "All files share same interpreter state (default is new state for each)")
	const historyDefault = "~/.jsi_history" // virtual/token filename, will be replaced by actual home dir if not changed.
	cli.EnvHelpFuncs = append(cli.EnvHelpFuncs, EnvHelp)
	defaultHistoryFile := historyDefault
	defaultModulePath := "."
	errs := struct2env.SetFromEnv(envPrefix, &config)
	if len(errs) > 0 {
		log.Errf("Error setting config from env: %v", errs)
	}
	if config.HistoryFile != "" {
		defaultHistoryFile = config.HistoryFile
	}
	if config.ModulePath != "" {
		defaultModulePath = config.ModulePath
	}
	historyFile := flag.String("history", defaultHistoryFile, "history `file` to use, empty to disable")
	modulePath := flag.String("module-path", defaultModulePath, "`directory` require() and readFileSync() resolve names against")
	unrestrictedIOs := flag.Bool("unrestricted-io", false, "allow require() and readFileSync() of absolute paths and .. (dangerous)")
	maxDepth := flag.Int("max-depth", eval.DefaultMaxDepth, "Maximum number of nested calls")
	cli.ArgsHelp = "*.js files to interpret or `-` for stdin without prompt or no arguments for stdin repl..."
	cli.MaxArgs = -1
	cli.Main()
	histFile := *historyFile
	if histFile == historyDefault {
		homeDir, err := os.UserHomeDir()
		histFile = filepath.Join(homeDir, ".jsi_history")
		if err != nil {
			log.Warnf("Couldn't get user home dir: %v", err)
			histFile = ""
		}
	}
	log.Infof("jsi %s - welcome!", cli.LongVersion)
	memlimit := debug.SetMemoryLimit(-1)
	if memlimit == math.MaxInt64 {
		log.LogVf("Memory limit not set, GOMEMLIMIT can be used to bound array growth; e.g. GOMEMLIMIT=1GiB")
	}
	options := repl.Options{
		ShowParse:   *showParse,
		ShowEval:    *showEval,
		ASTOnly:     *astOnly,
		HistoryFile: histFile,
		MaxDepth:    *maxDepth,
	}
	c := extensions.Config{
		ModulePath:      *modulePath,
		UnrestrictedIOs: *unrestrictedIOs,
	}
	err := extensions.Init(&c)
	if err != nil {
		return log.FErrf("Error initializing extensions: %v", err)
	}
	if *commandFlag != "" {
		o := options
		o.ShowEval = true
		res, errs := repl.EvalStringWithOption(o, *commandFlag)
		fmt.Print(res)
		if len(errs) > 0 {
			log.Errf("Errors: %v", errs)
		}
		return len(errs)
	}
	if len(flag.Args()) == 0 {
		return repl.Interactive(options)
	}
	s := newState(options)
	start := time.Now()
	for _, file := range flag.Args() {
		ret := processOneFile(file, s, options)
		if ret != 0 {
			return ret
		}
		if !*sharedState {
			s = newState(options)
		}
	}
	log.Infof("All done in %s", duration.Duration(time.Since(start)))
	return 0
}

func newState(options repl.Options) *eval.State {
	s := eval.NewState()
	if options.MaxDepth > 0 {
		s.MaxDepth = options.MaxDepth
	}
	return s
}

func processOneStream(s *eval.State, in io.Reader, options repl.Options) int {
	errs := repl.EvalAll(s, in, os.Stdout, options)
	if len(errs) > 0 {
		log.Errf("Errors: %v", errs)
	}
	return len(errs)
}

func processOneFile(file string, s *eval.State, options repl.Options) int {
	if file == "-" {
		log.Infof("Running on stdin")
		return processOneStream(s, os.Stdin, options)
	}
	f, err := os.Open(file)
	if err != nil {
		return log.FErrf("%v", err)
	}
	defer f.Close()
	verb := "Running"
	if options.ASTOnly {
		verb = "Parsing"
	}
	log.Infof("%s %s", verb, file)
	start := time.Now()
	code := processOneStream(s, f, options)
	log.LogVf("%s took %s", file, duration.Duration(time.Since(start)))
	return code
}
