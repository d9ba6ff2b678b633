package notify

func SubjectPlanPreviewed(planID string) string { return "alloc.plan." + planID + ".previewed" }
func SubjectPlanCommitted(planID string) string { return "alloc.plan." + planID + ".committed" }
func SubjectPlanExpired(planID string) string   { return "alloc.plan." + planID + ".expired" }

func SubjectOrgAssigned(orgID string) string { return "alloc.org." + orgID + ".assigned" }

func SubjectBidsScored(packageID string) string { return "alloc.package." + packageID + ".scored" }
