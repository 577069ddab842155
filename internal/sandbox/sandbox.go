package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"

	"github.com/signalnine/puzzlebench/internal/executil"
)

// Driver runs solution binaries inside a container, one container per
// invocation. This is the strictest isolation mode: the solution sees a
// fixed filesystem and can be pinned to CPU/memory limits so timings
// are reproducible across host load.
type Driver struct {
	Image       string
	CPULimit    float64
	MemoryLimit int64
	Timeout     time.Duration
	Args        []string
}

const mountPoint = "/solution"

// Run executes the binary at path once inside a fresh container and
// maps the container outcome onto the standard invocation taxonomy.
func (d *Driver) Run(ctx context.Context, path string) *executil.Outcome {
	o, err := d.run(ctx, path)
	if err != nil {
		return &executil.Outcome{
			Status: executil.StatusUnavailable,
			Err:    err.Error(),
		}
	}
	return o
}

func (d *Driver) run(ctx context.Context, path string) (*executil.Outcome, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving solution path: %w", err)
	}
	target := mountPoint + "/" + filepath.Base(abs)

	containerCfg := &container.Config{
		Image:  d.Image,
		Cmd:    append([]string{target}, d.Args...),
		Labels: map[string]string{"puzzlebench": "true"},
	}
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: abs, Target: target, ReadOnly: true},
		},
		NetworkMode: "none",
	}
	if d.CPULimit > 0 {
		hostCfg.NanoCPUs = int64(d.CPULimit * 1e9)
	}
	if d.MemoryLimit > 0 {
		hostCfg.Memory = d.MemoryLimit
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	waitResult := cli.ContainerWait(waitCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})

	var exitCode int
	timedOut := false
wait:
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				exitCode = 124
				timedOut = true
				break wait
			}
			// nil means no error on this channel; keep waiting for the result
		case status := <-waitResult.Result:
			exitCode = int(status.StatusCode)
			break wait
		}
	}
	elapsed := time.Since(start)

	stdout, stderr := d.collectLogs(containerID, cli)

	o := &executil.Outcome{
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
		Duration: elapsed,
	}
	switch {
	case timedOut:
		o.Status = executil.StatusTimedOut
		o.Err = "run timed out after " + d.Timeout.String()
	case exitCode == 0:
		o.Status = executil.StatusOK
	case exitCode > 128:
		// 128+n means the solution died to signal n.
		o.Status = executil.StatusCrashed
		o.Err = fmt.Sprintf("killed by signal %d", exitCode-128)
	default:
		o.Status = executil.StatusFailed
		o.Err = fmt.Sprintf("exit status %d", exitCode)
	}
	return o, nil
}

func (d *Driver) collectLogs(containerID string, cli *client.Client) ([]byte, []byte) {
	reader, err := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return nil, nil
	}
	defer reader.Close()

	var stdout, stderr bytes.Buffer
	stdcopy.StdCopy(&stdout, &stderr, reader)
	return stdout.Bytes(), stderr.Bytes()
}
