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
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chazu/ordinal/pkg/graph"
)

var _ = Describe("Session", func() {
	var (
		ctx     context.Context
		session *Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		session, err = NewStore(nil).Create(ctx, "")
		Expect(err).NotTo(HaveOccurred())
	})

	Context("When building a graph", func() {
		It("should order tasks by their dependencies", func() {
			Expect(session.AddTask(ctx, "Wake up")).To(Succeed())
			Expect(session.AddDependency(ctx, "Wake up", "Make Coffee")).To(Succeed())
			Expect(session.AddDependency(ctx, "Make Coffee", "Drink Coffee")).To(Succeed())

			order, err := session.ExecutionOrder(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(Equal([]string{"Wake up", "Make Coffee", "Drink Coffee"}))
		})

		It("should return an empty order for an empty graph", func() {
			order, err := session.ExecutionOrder(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(order).NotTo(BeNil())
			Expect(order).To(BeEmpty())
		})

		It("should pass engine rejections through unchanged", func() {
			Expect(session.AddDependency(ctx, "a", "b")).To(Succeed())
			before := session.Snapshot()

			err := session.AddDependency(ctx, "b", "a")
			var depErr *graph.DependencyError
			Expect(errors.As(err, &depErr)).To(BeTrue())
			Expect(depErr.Kind).To(Equal(graph.ErrCycleDetected))
			Expect(depErr.Path).To(Equal([]string{"a", "b"}))

			Expect(session.Snapshot()).To(Equal(before))
			Expect(errors.Is(session.AddTask(ctx, ""), graph.ErrEmptyTaskName)).To(BeTrue())
			Expect(errors.Is(session.AddDependency(ctx, "a", "a"), graph.ErrSelfDependency)).To(BeTrue())
		})

		It("should report the graph's unknown-task policy", func() {
			Expect(session.Strict()).To(BeFalse())

			strict, err := NewStore(nil, graph.WithStrictTasks()).Create(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(strict.Strict()).To(BeTrue())
		})

		It("should render the graph as DOT", func() {
			Expect(session.AddDependency(ctx, "build", "ship")).To(Succeed())

			var buf bytes.Buffer
			Expect(session.WriteDOT(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("digraph"))
			Expect(buf.String()).To(ContainSubstring(`"build"`))
		})
	})

	Context("When mutated concurrently", func() {
		It("should serialize access to the graph", func() {
			const workers = 8
			const perWorker = 25
			var wg sync.WaitGroup

			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer GinkgoRecover()
					defer wg.Done()
					for i := 0; i < perWorker; i++ {
						prev := fmt.Sprintf("w%d-%d", w, i)
						next := fmt.Sprintf("w%d-%d", w, i+1)
						Expect(session.AddDependency(ctx, prev, next)).To(Succeed())
						_, err := session.ExecutionOrder(ctx)
						Expect(err).NotTo(HaveOccurred())
					}
				}(w)
			}
			wg.Wait()

			snap := session.Snapshot()
			Expect(snap.Tasks).To(HaveLen(workers * (perWorker + 1)))
			Expect(snap.Edges).To(HaveLen(workers * perWorker))

			order, err := session.ExecutionOrder(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(HaveLen(workers * (perWorker + 1)))
		})
	})
})
