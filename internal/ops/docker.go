package ops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

const composeProjectLabel = "com.docker.compose.project"

func newDockerClient() (*client.Client, error) {
	// Respects DOCKER_HOST, DOCKER_TLS_VERIFY, DOCKER_CERT_PATH.
	return client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
}

func pingDaemon(ctx context.Context, cli *client.Client) error {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(pctx); err != nil {
		return fmt.Errorf("docker daemon is not accessible: %w", err)
	}
	return nil
}

// showStatus prints one line per project container, in any state.
func showStatus(ctx context.Context, cfg *Config) error {
	cli, err := newDockerClient()
	if err != nil {
		return err
	}
	defer cli.Close()
	if err := pingDaemon(ctx, cli); err != nil {
		return err
	}

	name := projectName(ctx, cfg)
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", composeProjectLabel+"="+name)),
	})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}
	if len(containers) == 0 {
		fmt.Println(styleMuted.Render(fmt.Sprintf("no containers for project %q", name)))
		return nil
	}

	fmt.Println(styleTitle.Render("NAME") + "\t" + styleTitle.Render("STATE") + "\t" + styleTitle.Render("PORTS"))
	for _, c := range containers {
		cname := strings.TrimPrefix(strings.Join(c.Names, ","), "/")
		var ports []string
		for _, p := range c.Ports {
			if p.PublicPort != 0 {
				ports = append(ports, fmt.Sprintf("%d->%d/%s", p.PublicPort, p.PrivatePort, p.Type))
			} else {
				ports = append(ports, fmt.Sprintf("%d/%s", p.PrivatePort, p.Type))
			}
		}
		fmt.Printf("%s\t%s\t%s\n", cname, renderState(c.State), strings.Join(ports, " "))
	}
	return nil
}

// verifyProjectGone reports leftover project containers after a clean.
// The compose exit code already decided success, so problems here only warn.
func verifyProjectGone(ctx context.Context, cfg *Config) {
	cli, err := newDockerClient()
	if err != nil {
		warn("[clean] could not verify teardown: %v", err)
		return
	}
	defer cli.Close()

	name := projectName(ctx, cfg)
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", composeProjectLabel+"="+name)),
	})
	if err != nil {
		warn("[clean] could not verify teardown: %v", err)
		return
	}
	if len(containers) > 0 {
		warn("[clean] %d container(s) for project %q still present", len(containers), name)
		return
	}
	info("[clean] no containers left for project %q", name)
}
