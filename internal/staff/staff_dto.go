package staff

import "time"

type CreateStaffRequest struct {
	FullName     string  `json:"full_name" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	GradeLevel   int     `json:"grade_level" binding:"required"`
	Step         int     `json:"step" binding:"required"`
	DepartmentID *string `json:"department_id"`
}

type UpdateStaffRequest struct {
	FullName     string  `json:"full_name" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	GradeLevel   int     `json:"grade_level" binding:"required"`
	Step         int     `json:"step" binding:"required"`
	DepartmentID *string `json:"department_id"`
	Status       string  `json:"status" binding:"required,oneof=ACTIVE ON_LEAVE RETIRED TERMINATED"`
}

type StaffResponse struct {
	ID           string  `json:"id"`
	StaffNumber  string  `json:"staff_number"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	GradeLevel   int     `json:"grade_level"`
	Step         int     `json:"step"`
	DepartmentID *string `json:"department_id,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

func mapToResponse(st Staff) StaffResponse {
	resp := StaffResponse{
		ID:          st.ID.String(),
		StaffNumber: st.StaffNumber,
		FullName:    st.FullName,
		Email:       st.Email,
		GradeLevel:  st.GradeLevel,
		Step:        st.Step,
		Status:      st.Status,
		CreatedAt:   st.CreatedAt.Format(time.RFC3339),
	}
	if st.DepartmentID != nil {
		v := st.DepartmentID.String()
		resp.DepartmentID = &v
	}
	return resp
}

func mapToListResponse(staffs []Staff) []StaffResponse {
	resp := make([]StaffResponse, len(staffs))
	for i, st := range staffs {
		resp[i] = mapToResponse(st)
	}
	return resp
}
