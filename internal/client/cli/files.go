package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dmitrijs2005/yama/internal/client/models"
	"github.com/dmitrijs2005/yama/internal/client/services"
)

func (a *App) List(ctx context.Context, p string) error {
	f, err := a.fileService.Read(ctx, p, services.ReadOptions{})
	if err != nil {
		return err
	}

	if !f.IsDir() {
		fmt.Fprintf(a.out, "-\t%s\t%s\n", p, f.ID)
		return nil
	}
	if f.Directory == nil || len(f.Directory.Files) == 0 {
		fmt.Fprintln(a.out, "(empty)")
		return nil
	}

	entries := append([]models.DirectoryEntry(nil), f.Directory.Files...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		kind, name := "-", e.Name
		if e.File.IsDir() {
			kind, name = "d", e.Name+"/"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", kind, name, e.File.ID)
	}
	return tw.Flush()
}

func (a *App) Cat(ctx context.Context, p string) error {
	content, err := a.fileService.ReadContent(ctx, p, services.ReadOptions{})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, content)
	return nil
}

func (a *App) Render(ctx context.Context, p string) error {
	content, err := a.fileService.ReadContent(ctx, p, services.ReadOptions{})
	if err != nil {
		return err
	}

	html, err := a.renderer.Render([]byte(content))
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, html)
	return nil
}

func (a *App) Put(ctx context.Context, local, remote string) error {
	file, err := os.Open(local)
	if err != nil {
		return err
	}
	defer file.Close()

	f, err := a.fileService.WriteRegular(ctx, remote, file, services.WriteOptions{})
	if err != nil {
		a.logger.Error(ctx, "upload failed", "local", local, "remote", remote, "error", err)
		return err
	}

	a.logger.Info(ctx, "file uploaded", "remote", remote, "id", f.ID)
	fmt.Fprintln(a.out, "Uploaded", remote)
	return nil
}

func (a *App) Mkdir(ctx context.Context, p string) error {
	if _, err := a.fileService.MakeDirectory(ctx, p, services.WriteOptions{FailIfExists: true}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Created", p)
	return nil
}

func (a *App) Remove(ctx context.Context, p string) error {
	if _, err := a.fileService.Remove(ctx, p, services.ReadOptions{}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed", p)
	return nil
}

func (a *App) Get(ctx context.Context, remote, local string) error {
	f, err := a.fileService.Read(ctx, remote, services.ReadOptions{})
	if err != nil {
		return err
	}
	if f.IsDir() {
		return fmt.Errorf("%s is a directory", remote)
	}

	data, err := a.fileService.Download(ctx, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(local, data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s to %s (%d bytes)\n", remote, local, len(data))
	return nil
}
