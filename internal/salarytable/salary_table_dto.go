package salarytable

type CreateSalaryGradeRequest struct {
	GradeLevel  int   `json:"grade_level" binding:"required"`
	Step        int   `json:"step" binding:"required"`
	BasicSalary int64 `json:"basic_salary" binding:"required"`
}

type UpdateSalaryGradeRequest struct {
	BasicSalary int64 `json:"basic_salary" binding:"required"`
}

type SalaryGradeResponse struct {
	ID          string `json:"id"`
	GradeLevel  int    `json:"grade_level"`
	Step        int    `json:"step"`
	BasicSalary int64  `json:"basic_salary"`
}

func mapToResponse(grade SalaryGrade) SalaryGradeResponse {
	return SalaryGradeResponse{
		ID:          grade.ID.String(),
		GradeLevel:  grade.GradeLevel,
		Step:        grade.Step,
		BasicSalary: grade.BasicSalary,
	}
}

func mapToListResponse(grades []SalaryGrade) []SalaryGradeResponse {
	resp := make([]SalaryGradeResponse, len(grades))
	for i, grade := range grades {
		resp[i] = mapToResponse(grade)
	}
	return resp
}
