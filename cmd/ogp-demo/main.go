/*
   Copyright 2021 Joseph Cumines

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Command ogp-demo drives the planner against a tiny YAML world/goal
// fixture: plan, execute the head of the plan, report what changed, and
// repeat until every goal is satisfied, the plan stalls, or a round limit
// is reached. It stands in for the out-of-scope tcell visualizer (spec.md §1
// "Non-goals", SPEC_FULL.md §B), exercising the same domain/planner API a
// real integration would.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/spf13/cobra"

	"github.com/joeycumines/go-ogp/planner"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatalf(`ogp-demo: %v`, err)
	}
}

func newRootCommand() *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   `ogp-demo`,
		Short: `Plan and run a pick-and-place fixture until its goals are met`,
		Long: `ogp-demo loads a YAML fixture describing robots, locations and an
"at" goal per robot, plans a path from the fixture's initial state to its
goals, then repeatedly executes the head of the plan until every goal is
satisfied or the plan stalls.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), fixturePath)
		},
	}
	cmd.Flags().StringVarP(&fixturePath, `fixture`, `f`, ``, `path to a YAML fixture (defaults to the built-in sample)`)
	return cmd
}

func runDemo(ctx context.Context, fixturePath string) error {
	raw, err := loadFixture(fixturePath)
	if err != nil {
		return err
	}

	dom, prob, err := buildPickAndPlace(raw)
	if err != nil {
		return err
	}

	historical := planner.NewDefaultHistorical()

	for round := 1; ; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if len(prob.GoalStack.AllGoals()) == 0 {
			log.Printf(`ogp-demo: all goals satisfied after %d round(s)`, round-1)
			return nil
		}

		now := time.Now()
		wave, err := planner.ActionsToDoInParallelNow(prob, dom, now)
		if err != nil {
			return fmt.Errorf(`ogp-demo: planning round %d: %w`, round, err)
		}
		if len(wave.Invocations) == 0 {
			log.Printf(`ogp-demo: stalled after %d round(s): no action advances any remaining goal`, round-1)
			return nil
		}

		for _, inv := range wave.Invocations {
			log.Printf(`ogp-demo: round %d: starting %s`, round, inv)
			if err := planner.NotifyActionStarted(prob, dom, inv, now); err != nil {
				return fmt.Errorf(`ogp-demo: starting %s: %w`, inv, err)
			}
		}

		node := wave.Node(dom)
		for {
			status, err := node.Tick()
			if err != nil {
				return fmt.Errorf(`ogp-demo: ticking round %d: %w`, round, err)
			}
			if status != bt.Running {
				break
			}
		}

		for _, inv := range wave.Invocations {
			ok, err := planner.NotifyActionDone(prob, dom, inv, historical, time.Now())
			if err != nil {
				return fmt.Errorf(`ogp-demo: finishing %s: %w`, inv, err)
			}
			if !ok {
				log.Printf(`ogp-demo: round %d: %s's over-all condition broke mid-flight`, round, inv)
			}
		}

		if round > len(prob.GoalStack.AllGoals())+len(dom.Actions())+10 {
			return fmt.Errorf(`ogp-demo: giving up after %d rounds without reaching the goals`, round)
		}
	}
}
