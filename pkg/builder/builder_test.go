// Copyright (c) 2026 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/carbynestack/lockstep.
//
// SPDX-License-Identifier: Apache-2.0
package builder_test

import (
	"errors"

	. "github.com/carbynestack/lockstep/pkg/builder"
	"github.com/carbynestack/lockstep/pkg/dres"
	"github.com/carbynestack/lockstep/pkg/protocol"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	var log []string

	BeforeEach(func() {
		log = nil
	})

	Context("when building a tree", func() {
		It("does not run the computation before the tree is pulled", func() {
			called := false
			_, out := Build(func(b *Builder) dres.Deferred[int] {
				called = true
				return dres.Known(1)
			})
			Expect(called).To(BeFalse())
			_, err := out.Get()
			Expect(errors.Is(err, dres.ErrUnresolved)).To(BeTrue())
		})
		It("resolves the result once the tree is drained", func() {
			tree, out := Build(func(b *Builder) dres.Deferred[int] {
				return emit(b, &log, "a", 7)
			})
			run(tree, 1)
			Expect(dres.Must(out)).To(Equal(7))
		})
		It("treats a computation without result as resolved zero value", func() {
			tree, out := Build(func(b *Builder) dres.Deferred[int] {
				emit(b, &log, "a", 7)
				return nil
			})
			run(tree, 1)
			Expect(dres.Must(out)).To(Equal(0))
		})
		It("exposes attached values to nested builders", func() {
			type key struct{}
			var seen interface{}
			tree, _ := Build(func(b *Builder) dres.Deferred[int] {
				return Seq(b, func(inner *Builder) dres.Deferred[int] {
					seen = inner.Value(key{})
					return dres.Known(0)
				})
			}, WithValue(key{}, "suite"))
			run(tree, 1)
			Expect(seen).To(Equal("suite"))
		})
	})

	Context("when composing sequentially", func() {
		It("builds later computations from resolved earlier results", func() {
			tree, out := Build(func(b *Builder) dres.Deferred[int] {
				x := emit(b, &log, "x", 20)
				return Seq(b, func(b *Builder) dres.Deferred[int] {
					// x is resolved here, the sequential child is built after x is done.
					return emit(b, &log, "y", dres.Must(x)+1)
				})
			})
			batches := run(tree, 10)
			Expect(dres.Must(out)).To(Equal(21))
			Expect(log).To(Equal([]string{"x", "y"}))
			Expect(batches).To(Equal(2))
		})
	})

	Context("when composing in parallel", func() {
		It("pulls independent protocols into one batch", func() {
			tree, out := Build(func(b *Builder) dres.Deferred[int] {
				return Par(b, func(b *Builder) dres.Deferred[int] {
					x := emit(b, &log, "x", 1)
					y := emit(b, &log, "y", 2)
					return dres.Map2(x, y, func(a, c int) int { return a + c })
				})
			})
			Expect(run(tree, 10)).To(Equal(1))
			Expect(dres.Must(out)).To(Equal(3))
		})
		It("keeps sequential children ordered inside a parallel node", func() {
			tree, _ := Build(func(b *Builder) dres.Deferred[int] {
				return Par(b, func(b *Builder) dres.Deferred[int] {
					Seq(b, func(b *Builder) dres.Deferred[int] {
						emit(b, &log, "a1", 0)
						return emit(b, &log, "a2", 0)
					})
					Seq(b, func(b *Builder) dres.Deferred[int] {
						return emit(b, &log, "b1", 0)
					})
					return nil
				})
			})
			Expect(run(tree, 10)).To(Equal(2))
			Expect(log).To(Equal([]string{"a1", "b1", "a2"}))
		})
	})

	Context("when looping", func() {
		It("iterates until the condition fails", func() {
			var calls []int
			tree, out := Build(func(b *Builder) dres.Deferred[int] {
				return WhileLoop(b, func(s int) bool { return s < 10 }, func(b *Builder, s int) dres.Deferred[int] {
					calls = append(calls, s)
					return dres.Known(s + 1)
				}, dres.Known(0))
			})
			run(tree, 1)
			Expect(dres.Must(out)).To(Equal(10))
			Expect(calls).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
		})
		It("builds the next iteration only after the previous one is evaluated", func() {
			tree, out := Build(func(b *Builder) dres.Deferred[int] {
				return WhileLoop(b, func(s int) bool { return s < 3 }, func(b *Builder, s int) dres.Deferred[int] {
					return emit(b, &log, "iteration", s+1)
				}, dres.Known(0))
			})
			Expect(run(tree, 10)).To(Equal(3))
			Expect(dres.Must(out)).To(Equal(3))
			Expect(log).To(HaveLen(3))
		})
		It("does not iterate when the condition fails initially", func() {
			tree, out := Build(func(b *Builder) dres.Deferred[int] {
				return WhileLoop(b, func(s int) bool { return false }, func(b *Builder, s int) dres.Deferred[int] {
					Fail("body must not be called")
					return nil
				}, dres.Known(5))
			})
			Expect(run(tree, 1)).To(Equal(0))
			Expect(dres.Must(out)).To(Equal(5))
		})
		It("panics when the body returns no state", func() {
			tree, _ := Build(func(b *Builder) dres.Deferred[int] {
				return WhileLoop(b, func(s int) bool { return true }, func(b *Builder, s int) dres.Deferred[int] {
					return nil
				}, dres.Known(0))
			})
			Expect(func() { run(tree, 1) }).To(PanicWith(MatchError(ContainSubstring("loop body returned no state"))))
		})
	})

	Context("when chaining steps", func() {
		It("hands every step the result of the previous one", func() {
			tree, out := Build(func(b *Builder) dres.Deferred[int] {
				s := Start(b, func(b *Builder) dres.Deferred[int] {
					return emit(b, &log, "first", 2)
				})
				t := Then(s, func(b *Builder, prev int) dres.Deferred[int] {
					return emit(b, &log, "second", prev*10)
				})
				return ThenPar(t, func(b *Builder, prev int) dres.Deferred[int] {
					x := emit(b, &log, "left", prev)
					y := emit(b, &log, "right", 1)
					return dres.Map2(x, y, func(a, c int) int { return a + c })
				}).Out()
			})
			Expect(run(tree, 10)).To(Equal(3))
			Expect(dres.Must(out)).To(Equal(21))
			Expect(log).To(Equal([]string{"first", "second", "left", "right"}))
		})
		It("refuses to continue a chain the evaluator already reached", func() {
			tree, _ := Build(func(b *Builder) dres.Deferred[int] {
				s := Start(b, func(b *Builder) dres.Deferred[int] {
					return emit(b, &log, "first", 2)
				})
				return Seq(b, func(b *Builder) dres.Deferred[int] {
					return Then(s, func(b *Builder, prev int) dres.Deferred[int] {
						return emit(b, &log, "late", prev)
					}).Out()
				})
			})
			Expect(func() { run(tree, 10) }).To(PanicWith(MatchError(protocol.ErrContract)))
			Expect(log).To(Equal([]string{"first"}))
		})
	})

	Context("when a result is read before it is resolved", func() {
		It("panics with an unresolved error", func() {
			tree, _ := Build(func(b *Builder) dres.Deferred[int] {
				return Par(b, func(b *Builder) dres.Deferred[int] {
					x := emit(b, &log, "x", 1)
					return Seq(b, func(b *Builder) dres.Deferred[int] {
						// Parallel siblings are built together, x is not evaluated yet.
						return dres.Known(dres.Must(x))
					})
				})
			})
			Expect(func() { run(tree, 10) }).To(PanicWith(MatchError(dres.ErrUnresolved)))
		})
	})
})
