package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
	"github.com/Layr-Labs/merkle-proof-go/pkg/hasher"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "merkle-tool",
		Usage: "Build merkle trees and produce or check inclusion proofs",
		Description: `Builds binary merkle trees over 32-byte leaves with proofs that Solidity
verifiers accept.

Offline commands (root, proof, verify) work on leaf files. Store commands
(publish, prove, list) keep leaf sets in the configured persistence backend so
proofs can be served for a root later.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "persistence-type",
				Usage:   fmt.Sprintf("Snapshot store: %s", strings.Join(config.GetSupportedPersistenceTypes(), ", ")),
				Value:   config.DefaultPersistence.String(),
				EnvVars: []string{config.EnvMerklePersistenceType},
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Badger data directory",
				Value:   config.DefaultDataPath,
				EnvVars: []string{config.EnvMerkleDataPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis server address (host:port)",
				EnvVars: []string{config.EnvMerkleRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvMerkleRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				Value:   config.DefaultRedisDB,
				EnvVars: []string{config.EnvMerkleRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix for every Redis key",
				EnvVars: []string{config.EnvMerkleRedisKeyPrefix},
			},
			&cli.StringFlag{
				Name:    "hash",
				Usage:   fmt.Sprintf("Node hash: %s", strings.Join(hasher.Names(), ", ")),
				Value:   config.DefaultHashName,
				EnvVars: []string{config.EnvMerkleHash},
			},
			&cli.IntFlag{
				Name:    "cache-size",
				Usage:   "Number of built trees kept in memory",
				Value:   config.DefaultCacheSize,
				EnvVars: []string{config.EnvMerkleCacheSize},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvMerkleDebug},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "root",
				Usage:  "Print the root of a leaf file",
				Flags:  []cli.Flag{leavesFlag(), orderedFlag()},
				Action: rootCommand,
			},
			{
				Name:   "proof",
				Usage:  "Print the proof for a leaf of a leaf file",
				Flags:  []cli.Flag{leavesFlag(), orderedFlag(), leafFlag(), indexFlag()},
				Action: proofCommand,
			},
			{
				Name:  "verify",
				Usage: "Check a proof against a root",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "proof",
						Usage:    "Concatenated proof elements (0x-prefixed hex)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "root",
						Usage:    "Tree root (0x-prefixed hex)",
						Required: true,
					},
					leafFlag(),
					orderedFlag(),
					indexFlag(),
					&cli.BoolFlag{
						Name:  "compat",
						Usage: "Use the on-chain ordered index walk (requires --ordered)",
					},
				},
				Action: verifyCommand,
			},
			{
				Name:   "publish",
				Usage:  "Build a tree from a leaf file and store it",
				Flags:  []cli.Flag{leavesFlag(), orderedFlag()},
				Action: publishCommand,
			},
			{
				Name:  "prove",
				Usage: "Print the proof for a leaf of a stored tree",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "root",
						Usage:    "Root of a published tree",
						Required: true,
					},
					leafFlag(),
					indexFlag(),
				},
				Action: proveCommand,
			},
			{
				Name:   "list",
				Usage:  "List stored trees",
				Action: listCommand,
			},
		},
	}
}

func leavesFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "leaves",
		Aliases:  []string{"l"},
		Usage:    "File with one 0x-prefixed 32-byte leaf per line, or - for stdin",
		Required: true,
	}
}

func orderedFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "ordered",
		Usage: "Keep leaf order and bind proofs to a 1-based index",
	}
}

func leafFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "leaf",
		Usage:    "Leaf to prove (0x-prefixed hex)",
		Required: true,
	}
}

func indexFlag() cli.Flag {
	return &cli.Uint64Flag{
		Name:  "index",
		Usage: "1-based leaf index for ordered proofs (0 selects the first occurrence)",
	}
}

func parseProverConfig(c *cli.Context) (*config.ProverConfig, error) {
	cfg := &config.ProverConfig{
		PersistenceType: config.PersistenceType(c.String("persistence-type")),
		DataPath:        c.String("data-path"),
		Redis: config.RedisConfig{
			Address:   c.String("redis-address"),
			Password:  c.String("redis-password"),
			DB:        c.Int("redis-db"),
			KeyPrefix: c.String("redis-key-prefix"),
		},
		HashName:  c.String("hash"),
		CacheSize: c.Int("cache-size"),
		Debug:     c.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
