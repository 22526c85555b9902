package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftSkillsAcceptStringOrList(t *testing.T) {
	var s Skills
	require.NoError(t, json.Unmarshal([]byte(`{"technical_skills":["Go"],"soft_skills":"Teamwork"}`), &s))
	assert.Equal(t, StringList{"Teamwork"}, s.SoftSkills)

	require.NoError(t, json.Unmarshal([]byte(`{"technical_skills":["Go"],"soft_skills":["A","B"]}`), &s))
	assert.Equal(t, StringList{"A", "B"}, s.SoftSkills)

	assert.Error(t, json.Unmarshal([]byte(`{"soft_skills":42}`), &s))
}

func TestResumeResultRoundTripsErrorEntries(t *testing.T) {
	raw := `{"a.pdf":{"contact_info":{"full_name":"Ada","email":"ada@example.com"},"education":[],"work_experience":[],"skills":{"technical_skills":["Go"]}},"b.pdf":{"error":"Error processing file: boom"}}`

	var results map[string]ResumeResult
	require.NoError(t, json.Unmarshal([]byte(raw), &results))
	require.NotNil(t, results["a.pdf"].Profile)
	assert.Equal(t, "Ada", results["a.pdf"].Profile.ContactInfo.FullName)
	assert.Nil(t, results["b.pdf"].Profile)
	assert.Equal(t, "Error processing file: boom", results["b.pdf"].Error)

	out, err := json.Marshal(results["b.pdf"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Error processing file: boom"}`, string(out))
}

func TestProfileText(t *testing.T) {
	p := &ResumeProfile{
		ContactInfo: ContactInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
		Education:   []Education{{Degree: "BSc in Mathematics", Institution: "London"}},
		WorkExperience: []WorkExperience{{
			Company: "Engines Ltd", JobTitle: "Analyst", Responsibilities: []string{"Wrote programs"},
		}},
		Skills:   Skills{TechnicalSkills: []string{"Go", "SQL"}, SoftSkills: StringList{"Focus"}},
		Projects: []Project{{Name: "Notes"}},
	}
	text := p.Text()
	assert.True(t, strings.HasPrefix(text, "Name: Ada Lovelace Email: ada@example.com Location: N/A"))
	assert.Contains(t, text, "- BSc in Mathematics from London")
	assert.Contains(t, text, "- Analyst at Engines Ltd   * Wrote programs")
	assert.Contains(t, text, "Technical Skills: - Go - SQL")
	assert.Contains(t, text, "Soft Skills: Focus")
	assert.Contains(t, text, "- Notes   Description: N/A")

	var nilProfile *ResumeProfile
	assert.Empty(t, nilProfile.Text())
}
