// Command sequencer runs one participant of the BFT consistent-broadcast
// protocol, reading its address book from ip.config and its node index
// from the command line.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jonboulle/clockwork"
	isatty "github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/drand/bftseq/internal/config"
	"github.com/drand/bftseq/internal/membership"
	"github.com/drand/bftseq/internal/metrics"
	"github.com/drand/bftseq/internal/node"
	"github.com/drand/bftseq/log"
)

var ipConfigFlag = &cli.StringFlag{
	Name:  "ip-config",
	Value: "ip.config",
	Usage: "Path to the address book: first line \"<num_nodes> <payload_size>\", one address per following line.",
}

var settingsFlag = &cli.StringFlag{
	Name:  "settings",
	Value: "sequencer.toml",
	Usage: "Path to the optional TOML settings file overriding log level, metrics bind address, warm-up and round interval.",
}

var evalDirFlag = &cli.StringFlag{
	Name:  "eval-dir",
	Value: "./eval",
	Usage: "Directory the node writes its per-round measurement file into on shutdown.",
}

func banner() {
	fmt.Fprintln(os.Stderr, "bftseq sequencer")
}

// CLI builds the sequencer's urfave/cli application.
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "sequencer"
	app.Usage = "run one node of a BFT consistent-broadcast sequencer"
	app.Flags = []cli.Flag{ipConfigFlag, settingsFlag, evalDirFlag}
	app.ArgsUsage = "<node-index>"
	app.Action = runCmd
	return app
}

func runCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: sequencer [options] <node-index>", 1)
	}
	var nodeIndex int
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &nodeIndex); err != nil {
		return cli.Exit(fmt.Sprintf("invalid node index %q: %s", c.Args().First(), err), 1)
	}

	ipConf, err := config.LoadIPConfig(c.String(ipConfigFlag.Name))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	settings, err := config.LoadSettings(c.String(settingsFlag.Name))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	level := log.InfoLevel
	if settings.LogLevel == "debug" {
		level = log.DebugLevel
	}
	logger := log.New(os.Stderr, level, settings.LogJSON).Named("sequencer")

	group, err := membership.NewGroup(ipConf.Addresses, uint32(nodeIndex))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger.Info("msg=", "starting node", "index=", nodeIndex, "num_nodes=", group.Len(),
		"quorum=", group.Quorum(), "payload_size=", ipConf.PayloadSize)

	registry := metrics.NewRegistry()
	if _, err := metrics.Serve(settings.MetricsBind, registry, logger); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	n, err := node.New(node.Config{
		Group:         group,
		PayloadSize:   ipConf.PayloadSize,
		Warmup:        settings.WarmupDuration(),
		RoundInterval: settings.RoundIntervalDuration(),
		InboxCapacity: 1024,
		CastCapacity:  1024,
		Clock:         clockwork.NewRealClock(),
		Registry:      registry,
		Logger:        logger,
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	n.Start()

	if isatty.IsTerminal(os.Stderr.Fd()) {
		waitOutWarmup(settings.WarmupDuration())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("msg=", "terminating")

	if err := os.MkdirAll(c.String(evalDirFlag.Name), 0o755); err != nil {
		logger.Warn("msg=", "could not create eval directory", "err=", err)
	}
	evalPath := fmt.Sprintf("%s/node_%d.eval", c.String(evalDirFlag.Name), nodeIndex)
	if err := n.Shutdown(evalPath); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// waitOutWarmup shows a progress spinner for the first proposal's
// warm-up delay so an operator watching a terminal sees the node is
// alive, rather than the interactive app looking hung.
func waitOutWarmup(warmup time.Duration) {
	if warmup <= 0 {
		return
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	s.Suffix = "  waiting for round warm-up..."
	s.Start()
	time.Sleep(warmup)
	s.Stop()
}

func main() {
	banner()
	if err := CLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
