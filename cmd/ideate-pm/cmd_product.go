package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/product"
)

var (
	initTitle  string
	initVision string

	reqDescription string
	reqTitle       string
	reqPriority    string

	refineID          string
	refineTitle       string
	refineDescription string
	refinePriority    string
	refineStatus      string
	refineAccept      []string
	refineAcceptType  string

	decideScope      string
	decideRef        string
	decideQuestion   string
	decideChoice     string
	decideRationale  string
	decideConfidence float64
	decideResolves   int64

	askScope    string
	askRef      string
	askQuestion string
	askSeverity string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize repo-scoped product storage",
	Long: `Creates product/memory.sqlite and compiles the views.

Running init again keeps existing data and updates the title and vision.`,
	RunE: runInit,
}

var addRequirementCmd = &cobra.Command{
	Use:   "add-requirement",
	Short: "Add a PROPOSED requirement to the backlog",
	RunE:  runAddRequirement,
}

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Update a requirement and append acceptance criteria",
	Long: `Updates only the fields that are passed.

Example:
  ideate-pm refine --id R-001 --status READY --add-accept "Cards are charged" --add-accept "Refunds work"`,
	RunE: runRefine,
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Record a product decision",
	Long: `Records a decision with its rationale. --resolves closes an open
question in the same transaction.`,
	RunE: runDecide,
}

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Record an open question",
	RunE:  runAsk,
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	if err := ws.Init(ctx, initTitle, initVision); err != nil {
		return err
	}
	logger.Info("product initialized", zap.String("dir", ws.Product().Dir), zap.Stringer("engine", ws.Engine()))
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized repo-scoped product storage at %s\n", ws.Product().Dir)
	return nil
}

func runAddRequirement(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}

	var added *product.Requirement
	err = ws.Update(ctx, func(s *product.Store) error {
		added, err = s.AddRequirement(ctx, product.AddRequirementParams{
			Description: reqDescription,
			Title:       reqTitle,
			Priority:    product.Priority(reqPriority),
		})
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added requirement %s (status=%s, priority=%s)\n",
		added.ReqID, added.Status, added.Priority)
	return nil
}

func runRefine(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}

	var added int
	err = ws.Update(ctx, func(s *product.Store) error {
		_, added, err = s.RefineRequirement(ctx, refineID, product.RefineParams{
			Title:          refineTitle,
			Description:    refineDescription,
			Priority:       product.Priority(refinePriority),
			Status:         product.Status(refineStatus),
			AddAcceptance:  refineAccept,
			AcceptanceType: product.AcceptanceType(refineAcceptType),
		})
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s. Added acceptance items: %d\n", refineID, added)
	return nil
}

func runDecide(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}

	var d *product.Decision
	err = ws.Update(ctx, func(s *product.Store) error {
		d, err = s.RecordDecision(ctx, product.RecordDecisionParams{
			Scope:      product.ScopeType(decideScope),
			Ref:        decideRef,
			Question:   decideQuestion,
			Choice:     decideChoice,
			Rationale:  decideRationale,
			Confidence: decideConfidence,
			Resolves:   decideResolves,
		})
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded decision %d.\n", d.ID)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}

	var q *product.OpenQuestion
	err = ws.Update(ctx, func(s *product.Store) error {
		q, err = s.AddOpenQuestion(ctx, product.AddOpenQuestionParams{
			Scope:    product.ScopeType(askScope),
			Ref:      askRef,
			Question: askQuestion,
			Severity: product.Severity(askSeverity),
		})
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded open question %d.\n", q.ID)
	return nil
}
