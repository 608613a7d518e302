package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/opendyn/internal/integrators"
	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/sim"
)

type decayFlow struct{}

func (d *decayFlow) StateDim() int { return 1 }

func (d *decayFlow) Derive(x opensys.State, p opensys.Params, t float64) (opensys.State, error) {
	return opensys.State{-x[0]}, nil
}

type explosiveFlow struct{}

func (e *explosiveFlow) StateDim() int { return 1 }

func (e *explosiveFlow) Derive(x opensys.State, p opensys.Params, t float64) (opensys.State, error) {
	return opensys.State{x[0] * x[0]}, nil
}

type brokenFlow struct{ err error }

func (b *brokenFlow) StateDim() int { return 1 }

func (b *brokenFlow) Derive(x opensys.State, p opensys.Params, t float64) (opensys.State, error) {
	return nil, b.err
}

var _ = Describe("Simulator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Run", func() {
		It("integrates exponential decay to the analytic value", func() {
			runner := sim.New(&decayFlow{}, integrators.NewRK4())
			result, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{Dt: 0.01, Duration: 1.0})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(100))
			Expect(result.Times).To(HaveLen(101))
			Expect(result.Final()[0]).To(BeNumerically("~", math.Exp(-1.0), 1e-8))
		})

		It("records one state more than steps taken", func() {
			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			result, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{Dt: 0.1, Duration: 1.0})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.States).To(HaveLen(result.StepsTaken + 1))
		})

		It("rejects an initial state with the wrong dimension", func() {
			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			_, err := runner.Run(ctx, opensys.State{1.0, 2.0}, sim.Config{Dt: 0.1, Duration: 1.0})

			Expect(errors.Is(err, opensys.ErrDimensionMismatch)).To(BeTrue())
		})

		DescribeTable("rejects invalid configs",
			func(cfg sim.Config) {
				runner := sim.New(&decayFlow{}, integrators.NewEuler())
				_, err := runner.Run(ctx, opensys.State{1.0}, cfg)
				Expect(err).To(HaveOccurred())
			},
			Entry("zero dt", sim.Config{Dt: 0, Duration: 1}),
			Entry("negative dt", sim.Config{Dt: -0.1, Duration: 1}),
			Entry("zero duration", sim.Config{Dt: 0.1, Duration: 0}),
			Entry("adaptive without tolerance", sim.Config{Dt: 0.1, Duration: 1, Adaptive: true}),
			Entry("inverted step bounds", sim.Config{Dt: 0.1, Duration: 1, MinDt: 1, MaxDt: 0.5}),
		)

		It("stops on context cancellation", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			_, err := runner.Run(cancelled, opensys.State{1.0}, sim.Config{Dt: 0.001, Duration: 100})

			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("error paths", func() {
		It("wraps a failing derivative in a NumericalError", func() {
			boom := errors.New("boom")
			runner := sim.New(&brokenFlow{err: boom}, integrators.NewEuler())
			result, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{Dt: 0.1, Duration: 1.0})

			Expect(errors.Is(err, boom)).To(BeTrue())
			var numErr *sim.NumericalError
			Expect(errors.As(err, &numErr)).To(BeTrue())
			Expect(result.Errors).To(HaveLen(1))
		})

		It("detects non-finite states when validation is on", func() {
			runner := sim.New(&explosiveFlow{}, integrators.NewEuler())
			_, err := runner.Run(ctx, opensys.State{10.0}, sim.Config{
				Dt: 1.0, Duration: 100, ValidateState: true,
			})

			Expect(errors.Is(err, sim.ErrUnstable)).To(BeTrue())
		})

		It("gives up when the step limit is exceeded", func() {
			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			_, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{
				Dt: 0.001, Duration: 10, MaxSteps: 5,
			})

			Expect(errors.Is(err, sim.ErrMaxSteps)).To(BeTrue())
		})

		It("fails when adaptive stepping needs a step below the minimum", func() {
			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			_, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{
				Dt: 0.5, Duration: 1.0,
				Adaptive: true, Tolerance: 1e-16, MinDt: 0.1,
			})

			Expect(errors.Is(err, sim.ErrStepTooSmall)).To(BeTrue())
		})
	})

	Describe("adaptive stepping", func() {
		It("uses the stepper's own error estimate when available", func() {
			runner := sim.New(&decayFlow{}, integrators.NewRK45())
			result, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{
				Dt: 0.01, Duration: 1.0,
				Adaptive: true, Tolerance: 1e-8, MaxDt: 0.5,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Final()[0]).To(BeNumerically("~", math.Exp(-1.0), 1e-6))
			// The controller should have grown the step well past the seed.
			Expect(result.StepsTaken).To(BeNumerically("<", 100))
		})

		It("falls back to step doubling for plain steppers", func() {
			runner := sim.New(&decayFlow{}, integrators.NewRK4())
			result, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{
				Dt: 0.1, Duration: 1.0,
				Adaptive: true, Tolerance: 1e-6, MaxDt: 0.5,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Final()[0]).To(BeNumerically("~", math.Exp(-1.0), 1e-4))
		})

		It("stamps samples with the time actually covered after a rejection", func() {
			// Euler at dt=0.1 on x'=-x estimates an error of 0.0025,
			// above this tolerance, so the first step is rejected and
			// accepted at dt=0.05.
			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			result, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{
				Dt: 0.1, Duration: 1.0,
				Adaptive: true, Tolerance: 0.002,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Times[1]).To(BeNumerically("~", 0.05, 1e-12))
			Expect(result.States[1][0]).To(BeNumerically("~", 0.950625, 1e-12))
			for i, ts := range result.Times {
				Expect(result.States[i][0]).To(BeNumerically("~", math.Exp(-ts), 1e-2))
			}
		})
	})

	Describe("metrics and observers", func() {
		It("resets metrics and reports their final values", func() {
			metric := &countingMetric{}
			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			runner.AddMetric(metric)

			result, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{Dt: 0.1, Duration: 1.0})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Metrics).To(HaveKey("count"))
			// One observation per recorded sample, final state included.
			Expect(result.Metrics["count"]).To(Equal(float64(len(result.Times))))
			Expect(result.Metrics["count"]).To(Equal(11.0))
		})

		It("notifies observers of every sample including the last", func() {
			var seen []float64
			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			runner.AddObserver(observerFunc(func(x opensys.State, t float64) {
				seen = append(seen, t)
			}))

			_, err := runner.Run(ctx, opensys.State{1.0}, sim.Config{Dt: 0.25, Duration: 1.0})

			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(HaveLen(5))
			Expect(seen[len(seen)-1]).To(BeNumerically("~", 1.0, 1e-12))
		})
	})

	Describe("RunWithCallback", func() {
		It("streams states and honors an early stop", func() {
			calls := 0
			runner := sim.New(&decayFlow{}, integrators.NewEuler())
			err := runner.RunWithCallback(ctx, opensys.State{1.0}, sim.Config{Dt: 0.1, Duration: 10},
				func(x opensys.State, t float64) bool {
					calls++
					return calls < 3
				})

			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(3))
		})
	})
})

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                       { return "count" }
func (c *countingMetric) Observe(x opensys.State, t float64) { c.n++ }
func (c *countingMetric) Value() float64                     { return float64(c.n) }
func (c *countingMetric) Reset()                             { c.n = 0 }

type observerFunc func(x opensys.State, t float64)

func (f observerFunc) OnStep(x opensys.State, t float64) { f(x, t) }
