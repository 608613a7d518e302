package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/opendyn/internal/integrators"
	"github.com/san-kum/opendyn/internal/opensys"
	"github.com/san-kum/opendyn/internal/sim"
)

var _ = Describe("Ensemble", func() {
	It("runs every member and decorrelates them by seed", func() {
		factory := func(seed int64) sim.Stepper { return integrators.NewStochastic(seed) }
		ensemble := sim.NewEnsemble(&decayFlow{}, factory, 8, 100)

		results, err := ensemble.Run(context.Background(), opensys.State{500.0}, sim.Config{
			Dt: 0.05, Duration: 2.0,
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(8))

		finals := map[float64]bool{}
		for _, r := range results {
			Expect(r.StepsTaken).To(Equal(40))
			finals[r.Final()[0]] = true
		}
		// With distinct seeds the trajectories should not coincide.
		Expect(len(finals)).To(BeNumerically(">", 1))
	})

	It("propagates a member failure", func() {
		factory := func(seed int64) sim.Stepper { return integrators.NewEuler() }
		ensemble := sim.NewEnsemble(&explosiveFlow{}, factory, 4, 0)

		_, err := ensemble.Run(context.Background(), opensys.State{10.0}, sim.Config{
			Dt: 1.0, Duration: 100, ValidateState: true,
		})

		Expect(err).To(MatchError(sim.ErrUnstable))
	})
})
