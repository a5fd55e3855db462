package report

import "sort"

// Payload is the tagged union decoded at the service boundary. Exactly one of
// Patient or Groups is set, matching the viewer's role: the patient endpoint
// returns a flat report list, the doctor endpoint returns per-owner groups.
type Payload struct {
	Patient []Report
	Groups  []OwnerGroup
}

// PatientPayload wraps a flat report list for a single owner.
func PatientPayload(reports []Report) Payload {
	return Payload{Patient: reports}
}

// DoctorPayload wraps the doctor-facing grouped shape.
func DoctorPayload(groups []OwnerGroup) Payload {
	return Payload{Groups: groups}
}

// View is the canonical view model produced by Normalize. Reports always
// carry their derived risk level; Groups is nil for patient payloads.
type View struct {
	Reports  []Report
	Groups   []OwnerGroup
	HighRisk int
}

// GroupCount returns the number of reports held by the group at index i.
func (v View) GroupCount(i int) int {
	if i < 0 || i >= len(v.Groups) {
		return 0
	}
	return len(v.Groups[i].Reports)
}

// Normalize reconciles either payload shape into a View.
//
// Patient reports pass through in server-given order. Doctor groups keep their
// owner order, while the flattened report sequence is sorted by createdAt
// descending so the dashboard gets a global recency view. Classification is
// pure and the sort is stable, so normalizing an already-normalized structure
// is a no-op. That property makes refresh-after-delete safe to repeat.
func Normalize(p Payload) View {
	if p.Groups == nil {
		reports := make([]Report, len(p.Patient))
		copy(reports, p.Patient)
		for i := range reports {
			reports[i].Risk = Classify(reports[i])
		}
		return View{Reports: reports, HighRisk: countHighRisk(reports)}
	}

	groups := make([]OwnerGroup, len(p.Groups))
	copy(groups, p.Groups)

	var flat []Report
	for gi := range groups {
		classified := make([]Report, len(groups[gi].Reports))
		copy(classified, groups[gi].Reports)
		for i := range classified {
			classified[i].Risk = Classify(classified[i])
			if classified[i].OwnerID == "" {
				classified[i].OwnerID = groups[gi].OwnerID
			}
		}
		groups[gi].Reports = classified
		flat = append(flat, classified...)
	}

	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].CreatedAt.After(flat[j].CreatedAt.Time)
	})

	return View{Reports: flat, Groups: groups, HighRisk: countHighRisk(flat)}
}

func countHighRisk(reports []Report) int {
	n := 0
	for i := range reports {
		if reports[i].Risk == RiskHigh {
			n++
		}
	}
	return n
}
