package domain

import "strings"

// Placeholder is shown for values the aggregation endpoint left empty.
const Placeholder = "N/D"

// Person is the owner of a row: a doctor or a patient.
type Person struct {
	FirstName string
	LastName  string
	ID        string
}

// PersonOf reads the name and id columns shared by most metrics.
func PersonOf(row Row) Person {
	first, ok := row.Text("nome")
	if !ok {
		first = row.TextOr("paziente_nome", "")
	}
	last, ok := row.Text("cognome")
	if !ok {
		last = row.TextOr("paziente_cognome", "")
	}
	id, ok := row.Text("medico_id")
	if !ok {
		id = row.TextOr("patient_id", Placeholder)
	}
	return Person{FirstName: first, LastName: last, ID: id}
}

// DisplayName prefers "first last", then the id, then the placeholder.
func (p Person) DisplayName() string {
	composed := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if composed != "" {
		return composed
	}
	if p.ID != "" {
		return p.ID
	}
	return Placeholder
}

type TreatmentsDaily struct {
	Day        string
	Owner      Person
	Treatments int64
}

func NewTreatmentsDaily(row Row) TreatmentsDaily {
	return TreatmentsDaily{
		Day:        row.TextOr("giorno", ""),
		Owner:      PersonOf(row),
		Treatments: row.Count("trattamenti"),
	}
}

type PatientsTotal struct {
	Owner    Person
	Patients int64
}

func NewPatientsTotal(row Row) PatientsTotal {
	return PatientsTotal{Owner: PersonOf(row), Patients: row.Count("pazienti_totali")}
}

type TreatmentsPerPatient struct {
	PatientFirstName string
	PatientLastName  string
	Owner            Person
	Treatments       int64
}

func NewTreatmentsPerPatient(row Row) TreatmentsPerPatient {
	return TreatmentsPerPatient{
		PatientFirstName: row.TextOr("paziente_nome", Placeholder),
		PatientLastName:  row.TextOr("paziente_cognome", ""),
		Owner:            PersonOf(row),
		Treatments:       row.Count("trattamenti_per_paziente"),
	}
}

type PhotosPerTreatment struct {
	TreatmentID string
	Total       int64
	Before      int64
	After       int64
	Other       int64
}

func NewPhotosPerTreatment(row Row) PhotosPerTreatment {
	return PhotosPerTreatment{
		TreatmentID: row.TextOr("treatment_id", Placeholder),
		Total:       row.Count("foto_totali"),
		Before:      row.Count("foto_before"),
		After:       row.Count("foto_after"),
		Other:       row.Count("foto_other"),
	}
}

type ComparisonsSummary struct {
	Owner      Person
	Total      int64
	Complete   int64
	Incomplete int64
	Exports    int64
	LastExport string
}

func NewComparisonsSummary(row Row) ComparisonsSummary {
	return ComparisonsSummary{
		Owner:      PersonOf(row),
		Total:      row.Count("comparisons_totali"),
		Complete:   row.Count("comparisons_complete"),
		Incomplete: row.Count("comparisons_incomplete"),
		Exports:    row.Count("export_totali"),
		LastExport: row.TextOr("ultimo_export", ""),
	}
}

type ComparisonsDaily struct {
	Day     string
	Created int64
}

func NewComparisonsDaily(row Row) ComparisonsDaily {
	return ComparisonsDaily{Day: row.TextOr("giorno", ""), Created: row.Count("comparisons_creati")}
}

type ComparisonExport struct {
	Owner        Person
	ComparisonID string
	ExportCount  int64
	LastExport   string
}

func NewComparisonExport(row Row) ComparisonExport {
	return ComparisonExport{
		Owner:        PersonOf(row),
		ComparisonID: row.TextOr("comparison_id", Placeholder),
		ExportCount:  row.Count("export_count"),
		LastExport:   row.TextOr("last_export_ts", ""),
	}
}

// DoctorActivity counts what a doctor added to the practice.
type DoctorActivity struct {
	Owner      Person
	Doctor     string
	Patients   int64
	Treatments int64
	Photos     int64
}

func NewDoctorActivity(row Row) DoctorActivity {
	return DoctorActivity{
		Owner:      PersonOf(row),
		Doctor:     row.TextOr("medico", ""),
		Patients:   row.Count("pazienti_aggiunti"),
		Treatments: row.Count("trattamenti_aggiunti"),
		Photos:     row.Count("foto_caricate"),
	}
}

// Name returns the owner's display name, falling back to the medico column.
func (d DoctorActivity) Name() string {
	name := d.Owner.DisplayName()
	if name == Placeholder && d.Doctor != "" {
		return d.Doctor
	}
	return name
}
