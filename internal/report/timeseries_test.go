package report_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AngelCh415/signups-report/internal/models"
	"github.com/AngelCh415/signups-report/internal/report"
	"github.com/AngelCh415/signups-report/internal/store"
)

var _ = Describe("Sign-up time series", func() {
	var (
		mem *store.MemoryStore
		ctx context.Context
	)
	now := at("2024-06-30T12:00:00Z")

	add := func(id, created string, eligible bool) {
		mem.UpsertOrganization(models.Organization{ID: id, CreatedAt: at(created), ToBeSynced: eligible})
	}

	BeforeEach(func() {
		ctx = context.Background()
		mem = store.NewMemoryStore()
	})

	It("groups eligible organizations by UTC day in ascending order", func() {
		add("a", "2024-06-02T23:30:00Z", true)
		add("b", "2024-06-01T10:00:00Z", true)
		add("c", "2024-06-02T00:10:00+02:00", true) // 2024-06-01 in UTC
		add("d", "2024-06-02T08:00:00Z", true)
		add("e", "2024-06-05T08:00:00Z", false)

		s, err := report.Signups(ctx, mem, now, 180)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Empty).To(BeFalse())
		Expect(s.WindowDays).To(Equal(180))
		Expect(s.Points).To(Equal([]models.DailySignup{
			{Date: "2024-06-01", Count: 2},
			{Date: "2024-06-02", Count: 2},
		}))
		Expect(s.Total).To(Equal(int64(4)))
	})

	It("leaves out organizations older than the window", func() {
		add("old", "2023-12-01T00:00:00Z", true)
		add("edge", now.Add(-180*24*time.Hour).Format(time.RFC3339), true)
		add("new", "2024-06-29T00:00:00Z", true)

		s, err := report.Signups(ctx, mem, now, 180)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Points).To(HaveLen(2))
		Expect(s.Points[0].Date).To(Equal("2024-01-02"))
		Expect(s.Total).To(Equal(int64(2)))
	})

	It("does not fill days without sign-ups", func() {
		add("x", "2024-06-01T00:00:00Z", true)
		add("y", "2024-06-10T00:00:00Z", true)

		s, err := report.Signups(ctx, mem, now, 180)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Points).To(HaveLen(2))
	})

	It("signals an empty window distinctly", func() {
		add("old", "2020-01-01T00:00:00Z", true)

		s, err := report.Signups(ctx, mem, now, 180)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Empty).To(BeTrue())
		Expect(s.Points).NotTo(BeNil())
		Expect(s.Points).To(BeEmpty())
		Expect(s.Total).To(BeZero())
		Expect(s.Message).To(Equal("No signups in the last 6 months."))
	})

	It("names windows that are not whole months in days", func() {
		s, err := report.Signups(ctx, mem, now, 45)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Empty).To(BeTrue())
		Expect(s.Message).To(Equal("No signups in the last 45 days."))
	})

	It("merges duplicate days and keeps the total equal to the sum", func() {
		spy := newSpy(mem)
		spy.days = []models.DayCount{
			{Date: at("2024-06-03T00:00:00Z"), Count: 1},
			{Date: at("2024-06-01T00:00:00Z"), Count: 2},
			{Date: at("2024-06-03T00:00:00Z"), Count: 4},
		}

		s, err := report.Signups(ctx, spy, now, 180)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Points).To(Equal([]models.DailySignup{
			{Date: "2024-06-01", Count: 2},
			{Date: "2024-06-03", Count: 5},
		}))
		var sum int64
		for _, p := range s.Points {
			sum += p.Count
		}
		Expect(s.Total).To(Equal(sum))
	})

	It("propagates store failures", func() {
		spy := newSpy(mem)
		want := spy.failWith("DailySignups")
		_, err := report.Signups(ctx, spy, now, 180)
		Expect(errors.Is(err, want)).To(BeTrue())
	})
})
