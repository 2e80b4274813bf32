package report_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AngelCh415/signups-report/internal/models"
	"github.com/AngelCh415/signups-report/internal/report"
	"github.com/AngelCh415/signups-report/internal/store"
)

var _ = Describe("Row enrichment", func() {
	Describe("TrialLength", func() {
		It("gives 30 days to organizations created before the cutover", func() {
			Expect(report.TrialLength(at("2023-05-14T23:59:59Z"))).To(Equal(30 * 24 * time.Hour))
			Expect(report.TrialLength(at("2021-01-01T00:00:00Z"))).To(Equal(report.LegacyTrial))
		})

		It("gives 14 days from the cutover instant on", func() {
			Expect(report.TrialLength(report.TrialCutover)).To(Equal(14 * 24 * time.Hour))
			Expect(report.TrialLength(at("2024-01-01T00:00:00Z"))).To(Equal(report.Trial))
		})

		It("compares instants, not wall clocks", func() {
			// 2023-05-15 03:00 at +05:00 is still 2023-05-14 in UTC
			loc := time.FixedZone("+05", 5*3600)
			Expect(report.TrialLength(time.Date(2023, 5, 15, 3, 0, 0, 0, loc))).To(Equal(report.LegacyTrial))
		})
	})

	Describe("TrialStatus", func() {
		It("reports Trial Ended once the trial is over", func() {
			created := at("2024-01-01T00:00:00Z")
			now := at("2024-01-20T00:00:00Z")
			Expect(report.DaysRemaining(created, now)).To(Equal(-5))
			Expect(report.TrialStatus(created, now)).To(Equal(report.TrialEnded))
		})

		It("treats zero remaining days as ended", func() {
			created := at("2024-01-01T00:00:00Z")
			Expect(report.TrialStatus(created, at("2024-01-15T00:00:00Z"))).To(Equal(report.TrialEnded))
			Expect(report.TrialStatus(created, at("2024-01-14T12:00:00Z"))).To(Equal(report.TrialEnded))
		})

		It("truncates to whole days while the trial runs", func() {
			created := at("2024-01-01T00:00:00Z")
			Expect(report.TrialStatus(created, at("2024-01-05T12:00:00Z"))).To(Equal("9"))
		})

		It("floors partial negative days", func() {
			created := at("2024-01-01T00:00:00Z")
			Expect(report.DaysRemaining(created, at("2024-01-15T12:00:00Z"))).To(Equal(-1))
		})
	})

	Describe("Enrich", func() {
		It("fills sentinels for an organization without installing user", func() {
			org := models.Organization{ID: "org-1", Name: "Acme", CreatedAt: at("2023-04-01T00:00:00Z"), ToBeSynced: true}
			row := report.Enrich(org, &report.Index{}, at("2023-04-11T00:00:00Z"), report.Activities{})

			Expect(row.Company).To(Equal("Acme"))
			Expect(row.FTDaysRemaining).To(Equal("20"))
			Expect(row.AdminName).To(Equal(report.NA))
			Expect(row.Login).To(Equal(report.NA))
			Expect(row.Email).To(Equal(report.NA))
			Expect(row.Activities).To(BeZero())
			Expect(row.LastActivityDate).To(Equal(report.NA))
			Expect(row.SignUpDate).To(Equal("01-04-2023"))
			Expect(row.UserID).To(Equal(report.NoUser))
			Expect(row.DevCount).To(BeZero())
			Expect(row.GoalsLive).To(BeZero())
			Expect(row.AlertsGenerated).To(BeZero())
		})

		It("uses sentinels for a missing name and creation time", func() {
			row := report.Enrich(models.Organization{ID: "org-x"}, &report.Index{}, at("2024-01-01T00:00:00Z"), report.Activities{})
			Expect(row.Company).To(Equal(report.NA))
			Expect(row.SignUpDate).To(Equal(report.NA))
			Expect(row.FTDaysRemaining).To(Equal(report.TrialEnded))
		})

		It("joins admin, counts and latest activity from the lookups", func() {
			mem := store.NewMemoryStore()
			org := models.Organization{ID: "org-1", Name: "Acme", CreatedAt: at("2024-03-01T09:00:00Z"), InstallationUser: "user-1", ToBeSynced: true}
			mem.UpsertOrganization(org)
			mem.UpsertUser(models.User{ID: "user-1", Name: "Ana", Login: "ana", Email: "ana@acme.io", Organizations: []string{"org-1"}})
			mem.UpsertUser(models.User{ID: "user-2", Organizations: []string{"org-1"}})
			for _, id := range []string{"a1", "a2", "a3"} {
				mem.AddAlert(models.Alert{ID: id, Org: "org-1"})
			}
			mem.AddAlertConfig(models.AlertConfig{ID: "g1", Org: "org-1", IsActive: true})
			mem.AddAlertConfig(models.AlertConfig{ID: "g2", Org: "org-1", IsActive: true})
			mem.AddAlertConfig(models.AlertConfig{ID: "g3", Org: "org-1", IsActive: false})

			idx, err := report.BuildIndex(context.Background(), mem, []models.Organization{org})
			Expect(err).NotTo(HaveOccurred())
			acts := report.Activities{"user-1": {Count: 4, Last: at("2024-03-04T22:00:00Z")}}

			row := report.Enrich(org, idx, at("2024-03-05T09:00:00Z"), acts)
			Expect(row.AdminName).To(Equal("Ana"))
			Expect(row.Login).To(Equal("ana"))
			Expect(row.Email).To(Equal("ana@acme.io"))
			Expect(row.DevCount).To(Equal(int64(2)))
			Expect(row.AlertsGenerated).To(Equal(int64(3)))
			Expect(row.GoalsLive).To(Equal(int64(2)))
			Expect(row.Activities).To(Equal(int64(4)))
			Expect(row.LastActivityDate).To(Equal("04-03-2024"))
			Expect(row.FTDaysRemaining).To(Equal("10"))
			Expect(row.UserID).To(Equal("user-1"))
		})

		It("keeps the user id but renders NA when the installing user is gone", func() {
			org := models.Organization{ID: "org-1", CreatedAt: at("2024-03-01T00:00:00Z"), InstallationUser: "ghost"}
			row := report.Enrich(org, &report.Index{}, at("2024-03-02T00:00:00Z"), report.Activities{})
			Expect(row.UserID).To(Equal("ghost"))
			Expect(row.AdminName).To(Equal(report.NA))
			Expect(row.LastActivityDate).To(Equal(report.NA))
			Expect(row.Activities).To(BeZero())
		})

		It("renders NA for the last activity date when events carry no timestamp", func() {
			org := models.Organization{ID: "org-1", CreatedAt: at("2024-03-01T00:00:00Z"), InstallationUser: "user-1"}
			acts := report.Activities{"user-1": {Count: 2}}
			row := report.Enrich(org, &report.Index{}, at("2024-03-02T00:00:00Z"), acts)
			Expect(row.Activities).To(Equal(int64(2)))
			Expect(row.LastActivityDate).To(Equal(report.NA))
		})
	})
})
