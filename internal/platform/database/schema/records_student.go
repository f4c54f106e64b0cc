package schema

// RecordsStudentTable represents the 'records.student' table
type RecordsStudentTable struct {
	Table           string
	ID              string
	IdentityID      string
	AdmissionNumber string
	FirstName       string
	LastName        string
	DateOfBirth     string
	Gender          string
	Phone           string
	Address         string
	GuardianName    string
	GuardianPhone   string
	AdmissionDate   string
	Grade           string
	CreatedAt       string
	UpdatedAt       string
	DeletedAt       string
}

// RecordsStudent is the schema definition for records.student
var RecordsStudent = RecordsStudentTable{
	Table:           "records.student",
	ID:              "id",
	IdentityID:      "identityid",
	AdmissionNumber: "admissionnumber",
	FirstName:       "firstname",
	LastName:        "lastname",
	DateOfBirth:     "dateofbirth",
	Gender:          "gender",
	Phone:           "phone",
	Address:         "address",
	GuardianName:    "guardianname",
	GuardianPhone:   "guardianphone",
	AdmissionDate:   "admissiondate",
	Grade:           "grade",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	DeletedAt:       "deletedat",
}

// Columns returns all standard column names
func (t RecordsStudentTable) Columns() []string {
	return []string{
		t.ID, t.IdentityID, t.AdmissionNumber, t.FirstName, t.LastName, t.DateOfBirth, t.Gender, t.Phone,
		t.Address, t.GuardianName, t.GuardianPhone, t.AdmissionDate, t.Grade, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
