package catalog

import (
	"medslot/internal/domain/capacity"
)

// ProviderView is a catalog listing entry: a hospital with its wards, or
// a lab with its tests.
type ProviderView struct {
	Name  string
	Units []string
}

// Static is the configured provider/unit catalog. The engine only needs
// it for descriptor validation; the listing methods back the catalog
// endpoints. Slot names are config-owned and shared by all test
// resources.
type Static struct {
	hospitals []ProviderView
	labs      []ProviderView
	slots     map[string]struct{}
	slotList  []string
}

func NewStatic(slots []string) *Static {
	slotSet := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		slotSet[s] = struct{}{}
	}
	return &Static{
		hospitals: defaultHospitals(),
		labs:      defaultLabs(),
		slots:     slotSet,
		slotList:  slots,
	}
}

func (s *Static) HasResource(resource capacity.ResourceKey) bool {
	var providers []ProviderView
	switch resource.Category {
	case capacity.CategoryBed:
		providers = s.hospitals
	case capacity.CategoryTest:
		providers = s.labs
	default:
		return false
	}
	for _, p := range providers {
		if p.Name != resource.ProviderID {
			continue
		}
		for _, u := range p.Units {
			if u == resource.UnitID {
				return true
			}
		}
	}
	return false
}

func (s *Static) ValidSlot(_ capacity.ResourceKey, slot string) bool {
	_, ok := s.slots[slot]
	return ok
}

func (s *Static) Hospitals() []ProviderView { return s.hospitals }
func (s *Static) Labs() []ProviderView      { return s.labs }
func (s *Static) Slots() []string           { return s.slotList }

func defaultHospitals() []ProviderView {
	wards := []string{
		"Intensive Care Units (ICU)",
		"Medical Wards",
		"Surgical Wards",
		"Maternity Wards",
	}
	names := []string{
		"IPGMER & SSKM Hospital",
		"Chittaranjan National Cancer Institute",
		"Saroj Gupta Cancer Centre & Research Institute",
		"Belle Vue Clinic",
		"AMRI Hospitals",
		"Apollo Gleneagles Hospital",
		"Medica Superspecialty Hospital",
		"Fortis Hospital, Anandapur",
		"Rabindranath Tagore International Institute of Cardiac Sciences",
		"Ruby General Hospital",
	}
	out := make([]ProviderView, len(names))
	for i, n := range names {
		out[i] = ProviderView{Name: n, Units: wards}
	}
	return out
}

func defaultLabs() []ProviderView {
	tests := []string{
		"Complete Blood Count (CBC)",
		"Liver Function Tests (LFTs)",
		"Lipid Profile",
		"Blood-Sugar Test",
		"Urinalysis",
	}
	names := []string{
		"Dr Lal PathLabs",
		"Metropolis Healthcare",
		"SRL Diagnostics",
		"Apollo Diagnostics",
		"Thyrocare",
		"Vijaya Diagnostic Centre",
		"Pathkind Labs",
		"Oncquest Laboratories",
		"Medall Diagnostics",
		"Quest Diagnostics India",
		"Healthians",
	}
	out := make([]ProviderView, len(names))
	for i, n := range names {
		out[i] = ProviderView{Name: n, Units: tests}
	}
	return out
}
