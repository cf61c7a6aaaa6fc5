package main

import (
	"html/template"
	"os/exec"
	"time"

	"go.autopost.app/app/pkgs/bufferpool"
)

func (a *autoPost) preStartHooks() {
	cfg := a.cfg.Hooks
	for _, cmd := range cfg.PreStart {
		a.executeHookCommand("pre-start", cfg.Shell, cmd)
	}
}

// postPublishHooks runs the configured commands after a post went out
// and got marked. The commands are templates, they can use the post and
// the LinkedIn post id.
func (a *autoPost) postPublishHooks(p *post, linkedInPostId string) {
	hc := a.cfg.Hooks
	if hc == nil {
		return
	}
	for _, cmdTmplString := range hc.PostPublish {
		go func(cmdTmplString string) {
			a.executeTemplateCommand("post-publish", cmdTmplString, map[string]any{
				"Post":           p,
				"Number":         p.Number,
				"Content":        p.Content,
				"LinkedInPostId": linkedInPostId,
			})
		}(cmdTmplString)
	}
}

func (a *autoPost) executeTemplateCommand(hookType string, tmpl string, data map[string]any) {
	cmdTmpl, err := template.New("cmd").Parse(tmpl)
	if err != nil {
		a.error("Failed to parse cmd template", "err", err)
		return
	}
	cmdBuf := bufferpool.Get()
	defer bufferpool.Put(cmdBuf)
	if err = cmdTmpl.Execute(cmdBuf, data); err != nil {
		a.error("Failed to execute cmd template", "err", err)
		return
	}
	a.executeHookCommand(hookType, a.cfg.Hooks.Shell, cmdBuf.String())
}

type hourlyHookFunc func()

func (a *autoPost) startHourlyHooks() {
	cfg := a.cfg.Hooks
	// Add configured hourly hooks
	for _, cmd := range cfg.Hourly {
		c := cmd
		f := func() {
			a.executeHookCommand("hourly", cfg.Shell, c)
		}
		a.hourlyHooks = append(a.hourlyHooks, f)
	}
	// When there are hooks, start ticker
	if len(a.hourlyHooks) > 0 {
		// Wait for next full hour
		tr := time.AfterFunc(time.Until(time.Now().Truncate(time.Hour).Add(time.Hour)), func() {
			// Execute once
			for _, f := range a.hourlyHooks {
				go f()
			}
			// Start ticker and execute regularly
			ticker := time.NewTicker(1 * time.Hour)
			a.shutdown.Add(func() {
				ticker.Stop()
				a.info("Stopped hourly hooks")
			})
			for range ticker.C {
				for _, f := range a.hourlyHooks {
					go f()
				}
			}
		})
		a.shutdown.Add(func() {
			if tr.Stop() {
				a.info("Canceled hourly hooks")
			}
		})
	}
}

func (a *autoPost) executeHookCommand(hookType, shell, cmd string) {
	a.info("Executing hook", "type", hookType, "cmd", cmd)
	out, err := exec.Command(shell, "-c", cmd).CombinedOutput()
	if err != nil {
		a.error("Failed to execute command", "err", err)
	}
	if len(out) > 0 {
		a.debug("Hook output", "output", string(out))
	}
}
