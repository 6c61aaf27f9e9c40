package pmchain

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/blockchaincommons/frost-pmchain/mark"
)

var _ = Describe("a provenance mark chain controlled by a threshold group", func() {
	var (
		names   = []string{"alice", "bob", "charlie"}
		signers = []string{"alice", "bob"}
		t0      = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	)

	Describe("genesis plus two appends, 2-of-3 (S1)", func() {
		It("produces a well-formed three-mark chain", func() {
			g, err := testGroup(2, names, "T")
			Expect(err).NotTo(HaveOccurred())

			chain, m0, receipt, err := genesisChain(g, signers, mark.Quartile, t0, "A")
			Expect(err).NotTo(HaveOccurred())
			Expect(m0.IsGenesis()).To(BeTrue())
			Expect(m0.Key()).To(Equal(m0.ChainID()))
			Expect(m0.Key()).To(HaveLen(16))

			m1, receipt, err := appendNext(chain, g, signers, receipt, t0.Add(time.Hour), "B")
			Expect(err).NotTo(HaveOccurred())

			m2, _, err := appendNext(chain, g, signers, receipt, t0.Add(2*time.Hour), "C")
			Expect(err).NotTo(HaveOccurred())

			Expect(m0.Precedes(m1)).To(BeTrue())
			Expect(m1.Precedes(m2)).To(BeTrue())
			Expect(mark.IsSequenceValid([]mark.Mark{m0, m1, m2})).To(BeTrue())
		})
	})

	Describe("every resolution produces keys of its fixed link length (S2)", func() {
		for _, res := range []mark.Resolution{mark.Low, mark.Medium, mark.Quartile, mark.High} {
			res := res
			It("holds for "+res.String(), func() {
				g, err := testGroup(2, names, "T")
				Expect(err).NotTo(HaveOccurred())

				chain, m0, receipt, err := genesisChain(g, signers, res, t0, nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(m0.Key()).To(HaveLen(res.LinkLength()))

				m1, receipt, err := appendNext(chain, g, signers, receipt, t0.Add(time.Hour), nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(m1.Key()).To(HaveLen(res.LinkLength()))

				m2, _, err := appendNext(chain, g, signers, receipt, t0.Add(2*time.Hour), nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(m2.Key()).To(HaveLen(res.LinkLength()))
			})
		}
	})

	Describe("a 100-mark chain (S3)", func() {
		It("validates end to end at every resolution", func() {
			for _, res := range []mark.Resolution{mark.Low, mark.Medium, mark.Quartile, mark.High} {
				g, err := testGroup(2, names, "T")
				Expect(err).NotTo(HaveOccurred())

				chain, m0, receipt, err := genesisChain(g, signers, res, t0, nil)
				Expect(err).NotTo(HaveOccurred())

				marks := []mark.Mark{m0}
				date := t0
				for i := 0; i < 99; i++ {
					date = date.Add(time.Minute)
					var m mark.Mark
					m, receipt, err = appendNext(chain, g, signers, receipt, date, nil)
					Expect(err).NotTo(HaveOccurred())
					marks = append(marks, m)
				}

				Expect(marks).To(HaveLen(100))
				Expect(mark.IsSequenceValid(marks)).To(BeTrue())
				for i := 0; i+1 < len(marks); i++ {
					Expect(marks[i].Precedes(marks[i+1])).To(BeTrue())
					Expect(marks[i+1].Seq()).To(Equal(marks[i].Seq() + 1))
					Expect(marks[i+1].ChainID()).To(Equal(marks[i].ChainID()))
					Expect(marks[i+1].Res()).To(Equal(marks[i].Res()))
				}
			}
		})
	})

	Describe("insufficient signers at genesis (S4)", func() {
		It("fails before any key material is exposed", func() {
			g, err := testGroup(2, names, "T")
			Expect(err).NotTo(HaveOccurred())

			_, _, err = g.Round1Commit([]string{"alice"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("insufficient signers"))
		})
	})

	Describe("date regression is rejected (S5)", func() {
		It("leaves the chain unchanged and accepts the corrected append", func() {
			g, err := testGroup(2, names, "T")
			Expect(err).NotTo(HaveOccurred())

			chain, _, receipt, err := genesisChain(g, signers, mark.Quartile, t0, nil)
			Expect(err).NotTo(HaveOccurred())

			_, _, err = appendNext(chain, g, signers, receipt, t0.Add(-60*time.Second), nil)
			Expect(err).To(MatchError(ErrDateMonotonicity))
			Expect(chain.NextSeq()).To(Equal(uint32(1)))

			m1, _, err := appendNext(chain, g, signers, receipt, t0.Add(time.Hour), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(m1.Seq()).To(Equal(uint32(1)))
		})
	})

	Describe("linkage tampering is detected (S6)", func() {
		It("fails the chain-integrity gate", func() {
			g, err := testGroup(2, names, "T")
			Expect(err).NotTo(HaveOccurred())

			chain, _, receipt, err := genesisChain(g, signers, mark.Quartile, t0, nil)
			Expect(err).NotTo(HaveOccurred())

			tampered := receipt
			tampered.Root[len(tampered.Root)-1] ^= 0xFF

			_, _, err = appendNext(chain, g, signers, tampered, t0.Add(time.Hour), nil)
			Expect(err).To(MatchError(ErrLinkageBroken))
		})
	})
})
