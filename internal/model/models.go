package model

// All lists every table the server migrates on startup.
func All() []any {
	return []any{
		&ResumeAnalysis{},
		&RankedCandidate{},
		&SelectedPersonnel{},
		&ChatHistory{},
		&RepoAssignment{},
		&User{},
	}
}
