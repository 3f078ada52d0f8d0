package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/aegiskit/aegis/pkg/lock"
)

// exitError reports a command that has already printed its output and
// just needs main to set a non-zero exit code.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

func createCommands() []*cli.Command {
	return []*cli.Command{
		createLockCommand(),
		createSemCommand(),
		createBreakerCommand(),
		createCacheCommand(),
	}
}

func createLockCommand() *cli.Command {
	return &cli.Command{
		Name:  "lock",
		Usage: "inspect or exercise a lock key",
		Commands: []*cli.Command{
			{
				Name:      "try",
				Usage:     "attempt a single non-blocking acquire",
				ArgsUsage: "<key>",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "ttl", Usage: "lock TTL (0 uses the provider default)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					key := cmd.Args().First()
					if key == "" {
						return usageErrorf("lock try requires <key>")
					}
					tk := toolkitFromContext(ctx)
					opts := []lock.CreateOption{}
					if ttl := cmd.Duration("ttl"); ttl > 0 {
						opts = append(opts, lock.WithTTL(ttl))
					}
					h, err := tk.lock.Create(key, opts...)
					if err != nil {
						return err
					}
					ok, err := h.Acquire().Run(ctx)
					if err != nil {
						return err
					}
					if ok {
						fmt.Printf("acquired %q as %s\n", key, h.LockID())
						return nil
					}
					fmt.Printf("unavailable: %q is already held\n", key)
					return &exitError{code: 1}
				},
			},
			{
				Name:      "state",
				Usage:     "print the current owner and expiration of a lock key",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					key := cmd.Args().First()
					if key == "" {
						return usageErrorf("lock state requires <key>")
					}
					tk := toolkitFromContext(ctx)
					h, err := tk.lock.Create(key)
					if err != nil {
						return err
					}
					st, err := h.GetState().Run(ctx)
					if err != nil {
						return err
					}
					if st == nil {
						fmt.Printf("%q: not held\n", key)
						return nil
					}
					fmt.Printf("%q: owner=%s expires=%s\n", key, st.Owner, formatExpiration(st.Expiration))
					return nil
				},
			},
		},
	}
}

func createSemCommand() *cli.Command {
	return &cli.Command{
		Name:  "sem",
		Usage: "inspect or exercise a semaphore key",
		Commands: []*cli.Command{
			{
				Name:      "state",
				Usage:     "print the limit and held slots of a semaphore key",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					key := cmd.Args().First()
					if key == "" {
						return usageErrorf("sem state requires <key>")
					}
					tk := toolkitFromContext(ctx)
					h, err := tk.semaphor.Create(key)
					if err != nil {
						return err
					}
					st, err := h.GetState().Run(ctx)
					if err != nil {
						return err
					}
					if st == nil {
						fmt.Printf("%q: no slots held\n", key)
						return nil
					}
					fmt.Printf("%q: limit=%d held=%d\n", key, st.Limit, len(st.AcquiredSlots))
					for _, slot := range st.AcquiredSlots {
						fmt.Printf("  slot=%s expires=%s\n", slot.SlotID, formatExpiration(slot.Expiration))
					}
					return nil
				},
			},
		},
	}
}

func createBreakerCommand() *cli.Command {
	return &cli.Command{
		Name:  "breaker",
		Usage: "inspect a circuit breaker key",
		Commands: []*cli.Command{
			{
				Name:      "state",
				Usage:     "print a breaker key's status",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					key := cmd.Args().First()
					if key == "" {
						return usageErrorf("breaker state requires <key>")
					}
					tk := toolkitFromContext(ctx)
					h, err := tk.breaker.Create(key)
					if err != nil {
						return err
					}
					st, err := h.GetState().Run(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("%q: status=%s\n", key, st.Status)
					return nil
				},
			},
		},
	}
}

func createCacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "inspect or exercise a cache key",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "fetch the raw value at a cache key",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					key := cmd.Args().First()
					if key == "" {
						return usageErrorf("cache get requires <key>")
					}
					tk := toolkitFromContext(ctx)
					res, err := tk.cache.Get(key).Run(ctx)
					if err != nil {
						return err
					}
					if !res.Found {
						fmt.Printf("%q: miss\n", key)
						return &exitError{code: 1}
					}
					fmt.Printf("%q: %s\n", key, res.Value)
					return nil
				},
			},
			{
				Name:      "put",
				Usage:     "store a raw value at a cache key",
				ArgsUsage: "<key> <value>",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "ttl", Usage: "entry TTL (0 uses the provider default)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := cmd.Args().Slice()
					if len(args) != 2 {
						return usageErrorf("cache put requires <key> <value>")
					}
					tk := toolkitFromContext(ctx)
					_, err := tk.cache.Put(args[0], []byte(args[1]), cmd.Duration("ttl")).Run(ctx)
					return err
				},
			},
		},
	}
}

func formatExpiration(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}
