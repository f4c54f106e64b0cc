package schema

// RecordsFacultyTable represents the 'records.faculty' table
type RecordsFacultyTable struct {
	Table          string
	ID             string
	IdentityID     string
	EmployeeNumber string
	FirstName      string
	LastName       string
	DateOfBirth    string
	Gender         string
	Phone          string
	Address        string
	Department     string
	Designation    string
	JoiningDate    string
	CreatedAt      string
	UpdatedAt      string
	DeletedAt      string
}

// RecordsFaculty is the schema definition for records.faculty
var RecordsFaculty = RecordsFacultyTable{
	Table:          "records.faculty",
	ID:             "id",
	IdentityID:     "identityid",
	EmployeeNumber: "employeenumber",
	FirstName:      "firstname",
	LastName:       "lastname",
	DateOfBirth:    "dateofbirth",
	Gender:         "gender",
	Phone:          "phone",
	Address:        "address",
	Department:     "department",
	Designation:    "designation",
	JoiningDate:    "joiningdate",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	DeletedAt:      "deletedat",
}

// Columns returns all standard column names
func (t RecordsFacultyTable) Columns() []string {
	return []string{
		t.ID, t.IdentityID, t.EmployeeNumber, t.FirstName, t.LastName, t.DateOfBirth, t.Gender, t.Phone,
		t.Address, t.Department, t.Designation, t.JoiningDate, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
