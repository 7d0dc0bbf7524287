package selectors

import "github.com/vsinha/baleyard/pkg/domain/entities"

// SupplierTrucks returns the trucks delivered by a supplier
func SupplierTrucks(supplierID string, trucks []entities.TruckLoad) []entities.TruckLoad {
	var out []entities.TruckLoad
	for _, t := range trucks {
		if t.SupplierID == supplierID {
			out = append(out, t)
		}
	}
	return out
}

// SupplierBales returns the bales that arrived on a supplier's trucks
func SupplierBales(supplierID string, bales []entities.Bale, trucks []entities.TruckLoad) []entities.Bale {
	own := make(map[string]bool)
	for _, t := range SupplierTrucks(supplierID, trucks) {
		own[t.TruckID] = true
	}
	var out []entities.Bale
	for _, b := range bales {
		if own[b.TruckID] {
			out = append(out, b)
		}
	}
	return out
}

// TruckBales returns the bales recorded against a truck
func TruckBales(truckID string, bales []entities.Bale) []entities.Bale {
	var out []entities.Bale
	for _, b := range bales {
		if b.TruckID == truckID {
			out = append(out, b)
		}
	}
	return out
}

// ActiveAlerts returns the uncleared alerts
func ActiveAlerts(alerts []entities.Alert) []entities.Alert {
	var out []entities.Alert
	for _, a := range alerts {
		if a.Active() {
			out = append(out, a)
		}
	}
	return out
}
