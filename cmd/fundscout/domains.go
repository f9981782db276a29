package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fundscout/internal/registry"
)

var (
	domainActor     string
	blacklistReason string
	noFundsReason   string
	revisitAfter    string
)

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Operator actions on registered domains",
}

var blacklistCmd = &cobra.Command{
	Use:   "blacklist <domain>",
	Short: "Blacklist a domain (terminal until lifted)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if blacklistReason == "" {
			return fmt.Errorf("--reason is required for blacklisting")
		}
		return withRegistry(func(ctx context.Context, ops *registryOps) error {
			if err := ops.reg.Blacklist(ctx, args[0], blacklistReason, domainActor); err != nil {
				return err
			}
			fmt.Printf("blacklisted %s\n", args[0])
			return nil
		})
	},
}

var markNoFundsCmd = &cobra.Command{
	Use:   "mark-no-funds <domain>",
	Short: "Mark a domain as having no funds this cycle",
	Long: `Marks a domain NO_FUNDS_CURRENT_YEAR. The domain automatically returns to
the active pool once the revisit date passes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		revisit, err := time.Parse("2006-01-02", revisitAfter)
		if err != nil {
			return fmt.Errorf("invalid --revisit-after %q (want YYYY-MM-DD): %w", revisitAfter, err)
		}
		if !revisit.After(time.Now()) {
			return fmt.Errorf("--revisit-after must be in the future")
		}
		return withRegistry(func(ctx context.Context, ops *registryOps) error {
			if err := ops.reg.MarkNoFunds(ctx, args[0], noFundsReason, revisit, domainActor); err != nil {
				return err
			}
			fmt.Printf("marked %s no-funds until %s\n", args[0], revisit.Format("2006-01-02"))
			return nil
		})
	},
}

var liftCmd = &cobra.Command{
	Use:   "lift <domain>",
	Short: "Lift a domain's blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, ops *registryOps) error {
			if err := ops.reg.LiftBlacklist(ctx, args[0], domainActor); err != nil {
				return err
			}
			fmt.Printf("blacklist lifted for %s\n", args[0])
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <domain>",
	Short: "Show a domain's registry state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, ops *registryOps) error {
			d, err := ops.reg.GetDomain(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("domain:            %s\n", d.Name)
			fmt.Printf("status:            %s\n", d.Status)
			fmt.Printf("first discovered:  %s\n", d.FirstDiscovered.Format(time.RFC3339))
			fmt.Printf("last seen:         %s (%d sightings)\n", d.LastSeen.Format(time.RFC3339), d.DiscoveryCount)
			if !d.LastProcessed.IsZero() {
				fmt.Printf("last processed:    %s\n", d.LastProcessed.Format(time.RFC3339))
			}
			fmt.Printf("best confidence:   %s\n", d.BestConfidence.StringFixed(2))
			fmt.Printf("candidates:        %d high, %d low\n", d.HighQualityCount, d.LowQualityCount)
			if d.BlacklistReason != "" {
				fmt.Printf("blacklist:         %s (by %s at %s)\n",
					d.BlacklistReason, d.BlacklistedBy, d.BlacklistedAt.Format(time.RFC3339))
			}
			if !d.RevisitAfter.IsZero() {
				fmt.Printf("revisit after:     %s (%s)\n", d.RevisitAfter.Format("2006-01-02"), d.NoFundsReason)
			}
			return nil
		})
	},
}

func init() {
	domainsCmd.PersistentFlags().StringVar(&domainActor, "actor", "operator", "who performs the action, recorded in the audit trail")
	blacklistCmd.Flags().StringVar(&blacklistReason, "reason", "", "why the domain is blacklisted (required)")
	markNoFundsCmd.Flags().StringVar(&noFundsReason, "reason", "funding cycle closed", "why the domain has no funds")
	markNoFundsCmd.Flags().StringVar(&revisitAfter, "revisit-after", "", "date the domain re-enters the pool (YYYY-MM-DD, required)")
	_ = markNoFundsCmd.MarkFlagRequired("revisit-after")

	domainsCmd.AddCommand(blacklistCmd)
	domainsCmd.AddCommand(markNoFundsCmd)
	domainsCmd.AddCommand(liftCmd)
	domainsCmd.AddCommand(showCmd)
}

type registryOps struct {
	reg *registry.Registry
}

func withRegistry(fn func(ctx context.Context, ops *registryOps) error) error {
	ctx := context.Background()

	pub := buildPublisher(ctx, cfg)
	defer pub.Close()

	reg, err := openRegistry(cfg, pub)
	if err != nil {
		return err
	}
	defer reg.Close()

	return fn(ctx, &registryOps{reg: reg})
}
