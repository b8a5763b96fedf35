package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-proof-go/pkg/leaves"
	"github.com/Layr-Labs/merkle-proof-go/pkg/logger"
	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proof-go/pkg/prover"
)

// readLeaves loads the --leaves file, or stdin for "-"
func readLeaves(c *cli.Context) ([][]byte, error) {
	path := c.String("leaves")

	var r io.Reader = c.App.Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open leaves file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	parsed, err := leaves.ReadHex(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse leaves file %s: %w", path, err)
	}
	return leaves.ToBytes(parsed), nil
}

// buildTree builds the tree for the --leaves file with the configured hasher
func buildTree(c *cli.Context) (*merkle.Tree, error) {
	cfg, err := parseProverConfig(c)
	if err != nil {
		return nil, err
	}
	h, err := cfg.Hasher()
	if err != nil {
		return nil, err
	}
	raw, err := readLeaves(c)
	if err != nil {
		return nil, err
	}
	return merkle.NewTree(raw, c.Bool("ordered"), merkle.WithHasher(h))
}

// resolveIndex returns --index, or the first position of leaf when it is unset
func resolveIndex(c *cli.Context, tree *merkle.Tree, leaf merkle.Leaf) uint64 {
	if index := c.Uint64("index"); index != 0 {
		return index
	}
	return uint64(tree.LeafIndex(leaf) + 1)
}

func rootCommand(c *cli.Context) error {
	tree, err := buildTree(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, merkle.EncodeRoot(tree))
	return err
}

func proofCommand(c *cli.Context) error {
	tree, err := buildTree(c)
	if err != nil {
		return err
	}
	leaf, err := merkle.DecodeDigest(c.String("leaf"))
	if err != nil {
		return fmt.Errorf("invalid leaf: %w", err)
	}

	var encoded string
	if c.Bool("ordered") {
		encoded, err = tree.GetProofOrderedHex(leaf, resolveIndex(c, tree, leaf))
	} else {
		encoded, err = tree.GetProofHex(leaf)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, encoded)
	return err
}

func verifyCommand(c *cli.Context) error {
	cfg, err := parseProverConfig(c)
	if err != nil {
		return err
	}
	h, err := cfg.Hasher()
	if err != nil {
		return err
	}
	verifier := merkle.NewVerifier(h)

	if c.Bool("compat") && !c.Bool("ordered") {
		return fmt.Errorf("--compat requires --ordered")
	}

	proof, err := merkle.DecodeProof(c.String("proof"))
	if err != nil {
		return err
	}
	root, err := merkle.DecodeDigest(c.String("root"))
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}
	leaf, err := merkle.DecodeDigest(c.String("leaf"))
	if err != nil {
		return fmt.Errorf("invalid leaf: %w", err)
	}

	var valid bool
	switch {
	case c.Bool("compat"):
		valid = verifier.CheckProofOrderedCompat(proof, root, leaf, c.Uint64("index"))
	case c.Bool("ordered"):
		valid = verifier.CheckProofOrdered(proof, root, leaf, c.Uint64("index"))
	default:
		valid = verifier.CheckProof(proof, root, leaf)
	}

	if !valid {
		_, _ = fmt.Fprintln(c.App.Writer, "invalid")
		return cli.Exit("proof does not verify", 1)
	}
	_, err = fmt.Fprintln(c.App.Writer, "valid")
	return err
}

// withService opens the configured store and runs fn against a proof service
func withService(c *cli.Context, fn func(*prover.Service) error) error {
	cfg, err := parseProverConfig(c)
	if err != nil {
		return err
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	store, err := prover.NewPersistence(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to open %s persistence: %w", cfg.PersistenceType, err)
	}
	svc, err := prover.NewService(cfg, store, l)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			l.Sugar().Warnw("Failed to close persistence", "error", err)
		}
	}()

	l.Sugar().Debugw("Proof service ready",
		"persistence", cfg.PersistenceType,
		"hash", cfg.HashName,
		"cache_size", cfg.CacheSize,
	)
	return fn(svc)
}

func publishCommand(c *cli.Context) error {
	raw, err := readLeaves(c)
	if err != nil {
		return err
	}
	return withService(c, func(svc *prover.Service) error {
		tree, err := svc.Publish(raw, c.Bool("ordered"))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, merkle.EncodeRoot(tree))
		return err
	})
}

func proveCommand(c *cli.Context) error {
	leaf, err := merkle.DecodeDigest(c.String("leaf"))
	if err != nil {
		return fmt.Errorf("invalid leaf: %w", err)
	}
	root := c.String("root")

	return withService(c, func(svc *prover.Service) error {
		tree, err := svc.Tree(root)
		if err != nil {
			return err
		}

		var proof merkle.Proof
		if tree.PreserveOrder() {
			proof, err = svc.ProveOrdered(root, leaf, resolveIndex(c, tree, leaf))
		} else {
			proof, err = svc.Prove(root, leaf)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, merkle.EncodeProof(proof))
		return err
	})
}

func listCommand(c *cli.Context) error {
	return withService(c, func(svc *prover.Service) error {
		snapshots, err := svc.Trees()
		if err != nil {
			return err
		}
		for _, s := range snapshots {
			mode := "unordered"
			if s.PreserveOrder {
				mode = "ordered"
			}
			created := time.Unix(s.CreatedAt, 0).UTC().Format(time.RFC3339)
			if _, err := fmt.Fprintf(c.App.Writer, "%s\t%d\t%s\t%s\t%s\n", s.Root, len(s.Leaves), mode, s.HashName, created); err != nil {
				return err
			}
		}
		return nil
	})
}
