// Command strandbench runs a handful of strand concurrency-runtime
// scenarios as one-off demonstrations, for manual poking rather than as
// a test harness.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ravhalden/strand"
	"github.com/ravhalden/strand/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "strandbench",
		Short: "Run strand concurrency-runtime scenarios",
	}
	root.AddCommand(newRendezvousCmd())
	root.AddCommand(newDisplaceCmd())
	root.AddCommand(newTickerCmd())
	root.AddCommand(newSelectCmd())
	return root
}

func newRendezvousCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rendezvous",
		Short: "Spawn two fibers that hand off one message over a capacity-0 channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			provider := metrics.NewBasicProvider()
			sched, err := strand.NewScheduler(strand.WithMetrics(provider))
			if err != nil {
				return err
			}
			ch, err := strand.NewChannel[string]()
			if err != nil {
				return err
			}

			a := sched.Spawn(ctx, "sender", func(ctx context.Context) (any, error) {
				return nil, ch.Send(ctx, "x")
			})
			var received string
			b := sched.Spawn(ctx, "receiver", func(ctx context.Context) (any, error) {
				v, err := ch.Receive(ctx)
				received = v
				return v, err
			})

			if _, err := strand.Join(ctx, a); err != nil {
				return err
			}
			if _, err := strand.Join(ctx, b); err != nil {
				return err
			}
			fmt.Println("received:", received)
			for name, v := range provider.Snapshot() {
				fmt.Printf("metric %s=%d\n", name, v)
			}
			return nil
		},
	}
}

func newDisplaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "displace",
		Short: "Send 1,2,3 into a capacity-2 displace channel with no consumer, then drain it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := strand.NewChannel[int](strand.WithCapacity(2), strand.WithOverflow(strand.OverflowDisplace))
			if err != nil {
				return err
			}
			ctx := context.Background()
			for _, v := range []int{1, 2, 3} {
				if _, err := ch.TrySend(v); err != nil {
					return err
				}
			}
			for i := 0; i < 2; i++ {
				v, err := ch.Receive(ctx)
				if err != nil {
					return err
				}
				fmt.Println("received:", v)
			}
			return nil
		},
	}
}

func newTickerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ticker",
		Short: "Demonstrate lapped ticker consumers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := strand.NewTickerChannel[string](3)
			ctx := context.Background()

			x := strand.NewTickerConsumer(ch)
			ch.Send("a")
			ch.Send("b")
			y := strand.NewTickerConsumer(ch)
			ch.Send("c")
			ch.Send("d")
			ch.Send("e")

			for _, c := range []*strand.TickerConsumer[string]{x, y} {
				for i := 0; i < 3; i++ {
					v, err := c.Receive(ctx)
					if err != nil {
						return err
					}
					fmt.Println("consumer received:", v)
				}
			}
			return nil
		},
	}
}

func newSelectCmd() *cobra.Command {
	var priority bool
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select between two always-ready receives",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := strand.NewChannel[int](strand.WithCapacity(1))
			if err != nil {
				return err
			}
			b, err := strand.NewChannel[int](strand.WithCapacity(1))
			if err != nil {
				return err
			}
			if _, err := a.TrySend(1); err != nil {
				return err
			}
			if _, err := b.TrySend(2); err != nil {
				return err
			}

			var opts []strand.SelectOption
			if priority {
				opts = append(opts, strand.WithPriority())
			}
			outcome, err := strand.Select(ctx, []strand.Op{
				strand.ReceiveOp(a),
				strand.ReceiveOp(b),
			}, opts...)
			if err != nil {
				return err
			}
			fmt.Printf("winner index=%d message=%v\n", outcome.Index, outcome.Message)
			return nil
		},
	}
	cmd.Flags().BoolVar(&priority, "priority", false, "favor the first ready operation in list order")
	return cmd
}
