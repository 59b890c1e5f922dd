package model

// Wire DTOs for the widget API. Binding tags cover shape and format; the
// per-field business rules (phone pattern, name length) live in the session
// guards so the widget gets the full list of offending fields at once.

type ContactRequest struct {
	TutorName  string `json:"tutor_name"`
	TutorPhone string `json:"tutor_phone"`
	TutorEmail string `json:"tutor_email"`
	PetName    string `json:"pet_name"`
	PetSpecies string `json:"pet_species"`
	PetAge     string `json:"pet_age"`
}

type ServiceRequest struct {
	Type string `json:"type" binding:"required"`
}

type SlotRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
	Time string `json:"time" binding:"required,hhmm"`
}
