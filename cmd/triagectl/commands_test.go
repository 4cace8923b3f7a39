package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aegis-triage/internal/model"
	"github.com/jwalitptl/aegis-triage/pkg/auth"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTriageCommand(t *testing.T) {
	out, err := run(t, "", "triage", "severe chest pain and sweating", "--age", "55", "--pain", "9", "--chest-pain")
	require.NoError(t, err)

	var result model.TriageResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, model.ESIEmergent, result.ESILevel)
	assert.Equal(t, model.SourceRules, result.Source)
}

func TestTriageCommandRejectsOffTopic(t *testing.T) {
	_, err := run(t, "", "triage", "tell me a joke")
	assert.Error(t, err)
}

func TestScoreCommandFromStdin(t *testing.T) {
	out, err := run(t, `{"age": 40, "smoking": true, "primaryComplaints": []}`, "score")
	require.NoError(t, err)

	var report model.HealthReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Less(t, report.WellnessScore, 100)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("AEGIS_AUTH_SECRET", "cli-secret")
	t.Setenv("AEGIS_AUTH_ISSUER", "aegis-cli")

	out, err := run(t, "", "token", "--staff", "s1", "--hospital", "h1", "--role", "admin")
	require.NoError(t, err)

	claims, err := auth.NewJWTService("cli-secret", "aegis-cli", 0).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "h1", claims.HospitalID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenCommandForPatient(t *testing.T) {
	t.Setenv("AEGIS_AUTH_SECRET", "cli-secret")
	t.Setenv("AEGIS_AUTH_ISSUER", "aegis-cli")

	out, err := run(t, "", "token", "--patient", "p-3")
	require.NoError(t, err)

	claims, err := auth.NewJWTService("cli-secret", "aegis-cli", 0).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.True(t, claims.IsPatient())
	assert.Equal(t, "p-3", claims.PatientID)

	_, err = run(t, "", "token")
	assert.Error(t, err)
}
