package dto

// ProvisionEmployeeRequest payload for creating accounts.
type ProvisionEmployeeRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// ChangeRoleRequest payload for role reassignment.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}
