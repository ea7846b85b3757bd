/*
Copyright 2025.

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

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/chazu/ordinal/pkg/graph"
	"github.com/chazu/ordinal/pkg/scenario"
)

type fakeScenarios map[string]*scenario.Scenario

func (f fakeScenarios) LoadEmbedded(name string) (*scenario.Scenario, error) {
	s, ok := f[name]
	if !ok {
		return nil, scenario.ErrNotFound
	}
	return s.DeepCopy(), nil
}

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = NewStore(fakeScenarios{
			"pair": {
				Name:         "pair",
				Tasks:        []string{"a", "b"},
				Dependencies: []scenario.Dependency{{Prerequisite: "a", Dependent: "b"}},
			},
			"cyclic": {
				Name: "cyclic",
				Dependencies: []scenario.Dependency{
					{Prerequisite: "a", Dependent: "b"},
					{Prerequisite: "b", Dependent: "a"},
				},
			},
		})
	})

	Context("When creating sessions", func() {
		It("should create an empty session", func() {
			s, err := store.Create(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.ID).NotTo(BeEmpty())
			Expect(s.Snapshot().Tasks).To(BeEmpty())
			Expect(store.Len()).To(Equal(1))
		})

		It("should give every session a distinct ID", func() {
			first, err := store.Create(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			second, err := store.Create(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.ID).NotTo(Equal(second.ID))
			Expect(store.IDs()).To(ConsistOf(first.ID, second.ID))
		})

		It("should seed a session from a scenario", func() {
			s, err := store.Create(ctx, "pair")
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Scenario).To(Equal("pair"))

			order, err := s.ExecutionOrder(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(Equal([]string{"a", "b"}))
		})

		It("should reject an unknown scenario", func() {
			_, err := store.Create(ctx, "missing")
			Expect(errors.Is(err, scenario.ErrNotFound)).To(BeTrue())
			Expect(store.Len()).To(BeZero())
		})

		It("should leave no session behind when a scenario fails to apply", func() {
			_, err := store.Create(ctx, "cyclic")
			Expect(errors.Is(err, graph.ErrCycleDetected)).To(BeTrue())
			Expect(store.Len()).To(BeZero())
		})

		It("should refuse to seed without a scenario source", func() {
			_, err := NewStore(nil).Create(ctx, "pair")
			Expect(errors.Is(err, scenario.ErrNotFound)).To(BeTrue())
		})

		It("should apply graph options to every session", func() {
			strict := NewStore(nil, graph.WithStrictTasks())
			s, err := strict.Create(ctx, "")
			Expect(err).NotTo(HaveOccurred())

			err = s.AddDependency(ctx, "a", "b")
			Expect(errors.Is(err, graph.ErrUnknownTask)).To(BeTrue())
		})
	})

	Context("When recording scenario loads", func() {
		countSeries := func() int {
			n, err := testutil.GatherAndCount(ctrlmetrics.Registry, "ordinal_scenario_loads_total")
			ExpectWithOffset(1, err).NotTo(HaveOccurred())
			return n
		}

		It("should not add a series per unknown scenario name", func() {
			_, err := store.Create(ctx, "missing")
			Expect(err).To(HaveOccurred())
			before := countSeries()

			for i := 0; i < 50; i++ {
				_, err := store.Create(ctx, fmt.Sprintf("missing-%d", i))
				Expect(errors.Is(err, scenario.ErrNotFound)).To(BeTrue())
			}
			_, err = NewStore(nil).Create(ctx, "no-source")
			Expect(err).To(HaveOccurred())

			Expect(countSeries()).To(Equal(before))
			Expect(store.Len()).To(BeZero())
		})
	})

	Context("When seeding fails", func() {
		var (
			errorLogs []string
			logCtx    context.Context
		)

		BeforeEach(func() {
			errorLogs = nil
			logger := funcr.New(func(_, args string) {
				if strings.Contains(args, `"error"=`) {
					errorLogs = append(errorLogs, args)
				}
			}, funcr.Options{Verbosity: 0})
			logCtx = logf.IntoContext(ctx, logger)
		})

		It("should not log an unknown scenario as an error", func() {
			_, err := store.Create(logCtx, "missing")
			Expect(errors.Is(err, scenario.ErrNotFound)).To(BeTrue())
			Expect(errorLogs).To(BeEmpty())
		})

		It("should log a scenario that fails to apply as an error", func() {
			_, err := store.Create(logCtx, "cyclic")
			Expect(errors.Is(err, graph.ErrCycleDetected)).To(BeTrue())
			Expect(errorLogs).To(HaveLen(1))
			Expect(errorLogs[0]).To(ContainSubstring("Failed to seed session"))
		})
	})

	Context("When looking up and deleting sessions", func() {
		It("should return a created session", func() {
			s, err := store.Create(ctx, "")
			Expect(err).NotTo(HaveOccurred())

			got, err := store.Get(s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeIdenticalTo(s))
		})

		It("should report unknown IDs", func() {
			_, err := store.Get("nope")
			Expect(errors.Is(err, ErrNotFound)).To(BeTrue())

			err = store.Delete(ctx, "nope")
			Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
		})

		It("should drop a deleted session", func() {
			s, err := store.Create(ctx, "pair")
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Delete(ctx, s.ID)).To(Succeed())
			_, err = store.Get(s.ID)
			Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
			Expect(store.Len()).To(BeZero())
		})
	})

	Context("When used concurrently", func() {
		It("should create and delete sessions safely", func() {
			const workers = 16
			var wg sync.WaitGroup
			ids := make(chan string, workers)

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					s, err := store.Create(ctx, "pair")
					Expect(err).NotTo(HaveOccurred())
					ids <- s.ID
				}()
			}
			wg.Wait()
			close(ids)
			Expect(store.Len()).To(Equal(workers))

			for id := range ids {
				Expect(store.Delete(ctx, id)).To(Succeed())
			}
			Expect(store.Len()).To(BeZero())
		})
	})
})
