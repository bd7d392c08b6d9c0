package employee

type Employee struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	JobTitle    string  `json:"job_title"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
}

type EmergencyContact struct {
	ID           int64   `json:"id,omitempty"`
	Name         string  `json:"primary_emergency_contact"`
	Phone        *string `json:"emergency_contact_phone"`
	Relationship *string `json:"relationship"`
}

type SecondaryEmergencyContact struct {
	ID           int64   `json:"id,omitempty"`
	Name         string  `json:"secondary_emergency_contact"`
	Phone        *string `json:"s_emergency_contact_phone"`
	Relationship *string `json:"s_relationship"`
}

// Aggregate is an employee row merged with both of its contact collections.
type Aggregate struct {
	Employee
	EmergencyContacts          []EmergencyContact          `json:"emergency_contacts"`
	SecondaryEmergencyContacts []SecondaryEmergencyContact `json:"secondary_emergency_contacts"`
}

// Fields are the scalar columns overwritten by a replace. The name is the
// lookup key and is never changed.
type Fields struct {
	JobTitle    string  `json:"job_title"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
}
