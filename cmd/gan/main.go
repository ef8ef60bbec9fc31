// Package main provides the gan command line tool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("gan %s\n", version)
	case "demo":
		runDemo(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("gan - spectrally normalized GAN building blocks for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Train a tiny SN-GAN with self-attention on synthetic stripes")
}

func runDemo(args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	cfg := defaultDemoConfig()
	fs.IntVar(&cfg.Steps, "steps", cfg.Steps, "Number of training iterations")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "Batch size")
	fs.IntVar(&cfg.LatentDim, "latent", cfg.LatentDim, "Latent vector size")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Seed for latent vectors and real samples")
	lrD := fs.Float64("lr-d", float64(cfg.LRDiscriminator), "Discriminator learning rate")
	lrG := fs.Float64("lr-g", float64(cfg.LRGenerator), "Generator learning rate")
	beta := fs.Float64("ema-beta", float64(cfg.EMABeta), "Generator averaging decay")
	fs.IntVar(&cfg.LogEvery, "log-every", cfg.LogEvery, "Print losses every N steps")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("demo: %v", err)
	}
	cfg.LRDiscriminator = float32(*lrD)
	cfg.LRGenerator = float32(*lrG)
	cfg.EMABeta = float32(*beta)

	fmt.Println("SN-GAN demo (hinge loss, self-attention, generator EMA)")
	fmt.Printf("  steps=%d batch=%d latent=%d seed=%d\n", cfg.Steps, cfg.BatchSize, cfg.LatentDim, cfg.Seed)

	trainer, err := newTrainer(cfg)
	if err != nil {
		log.Fatalf("demo: %v", err)
	}
	fmt.Printf("  generator: %d parameters, discriminator: %d parameters\n",
		countParameters(trainer.gen), countParameters(trainer.disc))

	for step := 1; step <= cfg.Steps; step++ {
		stats := trainer.Step()
		if step%cfg.LogEvery == 0 || step == cfg.Steps {
			fmt.Printf("step %4d: loss_d=%.4f loss_g=%.4f d_real=%.3f d_fake=%.3f gate_d=%.4f\n",
				step, stats.LossD, stats.LossG, stats.RealScore, stats.FakeScore, stats.DiscGate)
		}
	}

	mean, std := trainer.SampleStats(64)
	fmt.Printf("EMA generator samples: mean=%.4f std=%.4f\n", mean, std)
}
