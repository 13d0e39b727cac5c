package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	"actuarial-runner-server/models"
)

// ExecutorService invokes model scripts as child processes. Each
// invocation is independent: the only shared state between concurrent
// executions is the scratch directory, which is partitioned by execution
// ID.
type ExecutorService struct {
	interpreter string
}

// NewExecutorService creates an executor that runs scripts with the given
// interpreter (normally "Rscript"; tests use "sh").
func NewExecutorService(interpreter string) *ExecutorService {
	return &ExecutorService{interpreter: interpreter}
}

// Execute serializes the envelope to the input file, runs the script with
// the input and output paths as positional arguments, and waits up to
// timeout. On timeout the process is killed. The input file is deleted
// before returning on every path; the output file, if the runtime wrote
// one, is left for the decoder.
func (e *ExecutorService) Execute(envelope *models.ExecutionEnvelope, scriptPath, inputPath, outputPath string, timeout time.Duration) (*models.ExecResult, error) {
	inputJSON, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execution envelope: %w", err)
	}
	if err := os.WriteFile(inputPath, inputJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write input file: %w", err)
	}
	defer func() {
		if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
			log.Printf("executor: failed to remove input file %s: %v", inputPath, err)
		}
	}()

	cmd := exec.Command(e.interpreter, scriptPath, inputPath, outputPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", scriptPath, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	result := &models.ExecResult{}
	select {
	case err := <-done:
		result.Duration = time.Since(start)
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		result.ExitedCleanly = err == nil
	case <-time.After(timeout):
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		<-done
		result.Duration = time.Since(start)
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		result.TimedOut = true
	}

	return result, nil
}
