package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"actuarial-runner-server/models"
	"actuarial-runner-server/services"

	"github.com/stretchr/testify/require"
)

func testDecoder(t *testing.T) (*services.DecoderService, string) {
	t.Helper()
	dir := t.TempDir()
	ws, err := services.NewWorkspaceService(dir)
	require.NoError(t, err)
	return services.NewDecoderService(ws), dir
}

func writeOutput(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "output_test.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDecodeOutputMissing(t *testing.T) {
	t.Parallel()
	decoder, dir := testDecoder(t)

	_, derr := decoder.Decode(filepath.Join(dir, "output_absent.json"), models.FamilyRegression)
	require.NotNil(t, derr)
	require.Equal(t, models.KindOutputMissing, derr.Kind)
}

func TestDecodeOutputUnparseable(t *testing.T) {
	t.Parallel()
	decoder, dir := testDecoder(t)
	path := writeOutput(t, dir, "Error in glm.fit: NA/NaN/Inf")

	_, derr := decoder.Decode(path, models.FamilyRegression)
	require.NotNil(t, derr)
	require.Equal(t, models.KindOutputUnparseable, derr.Kind)
	require.NotEmpty(t, derr.Details)
	require.NoFileExists(t, path)
}

func TestDecodeSimulatedDataTakesPrecedence(t *testing.T) {
	t.Parallel()
	decoder, dir := testDecoder(t)

	// The success flag is true; the simulated flag still wins.
	path := writeOutput(t, dir, `{"success": true, "simulacao": true, "coeficientes": {"x": 1.2}}`)

	_, derr := decoder.Decode(path, models.FamilyRegression)
	require.NotNil(t, derr)
	require.Equal(t, models.KindSimulatedData, derr.Kind)
	require.NoFileExists(t, path)
}

func TestDecodeModelExecutionFailed(t *testing.T) {
	t.Parallel()
	decoder, dir := testDecoder(t)
	path := writeOutput(t, dir, `{"success": false, "error": "frequency model did not converge"}`)

	_, derr := decoder.Decode(path, models.FamilyRiskSimulation)
	require.NotNil(t, derr)
	require.Equal(t, models.KindModelExecutionFailed, derr.Kind)
	require.Equal(t, "frequency model did not converge", derr.Message)
	require.NotEmpty(t, derr.Recommendations)
	require.NoFileExists(t, path)
}

func TestDecodeAccepted(t *testing.T) {
	t.Parallel()
	decoder, dir := testDecoder(t)
	path := writeOutput(t, dir, `{"success": true, "coeficientes": {"x": 1.2}, "metrics": {"aic": 152.3}}`)

	payload, derr := decoder.Decode(path, models.FamilyRegression)
	require.Nil(t, derr)
	require.Equal(t, true, payload["success"])
	require.Contains(t, payload, "coeficientes")
	require.Contains(t, payload, "metrics")

	// Accepted or rejected, the output file never survives decode.
	require.NoFileExists(t, path)
}
