package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/jimyag/poolagent/pkg/idgen"
	"github.com/jimyag/poolagent/pkg/libvirt"
	"github.com/jimyag/poolagent/pkg/stanza"
	"github.com/spf13/cobra"
)

// session 一次命令执行使用的连接和输出
type session struct {
	req requester
	out io.Writer
}

func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	req, err := newRequester(ctx)
	if err != nil {
		return err
	}
	defer req.Close()

	return fn(ctx, &session{req: req, out: cmd.OutOrStdout()})
}

// send 发送请求，error 类型的响应转换为 *apierror.Error
func (s *session) send(ctx context.Context, archipel *stanza.Archipel) (*stanza.IQ, error) {
	id, err := idgen.GenerateStanzaID()
	if err != nil {
		return nil, err
	}
	reply, err := s.req.Do(ctx, stanza.NewRequest(id, target, archipel))
	if err != nil {
		return nil, err
	}
	if err := reply.Err(); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *session) list(ctx context.Context) error {
	reply, err := s.send(ctx, &stanza.Archipel{Action: "poollist"})
	if err != nil {
		return err
	}
	var payload struct {
		Pools []stanza.PoolItem `xml:"pool"`
	}
	if err := reply.DecodePayload(&payload); err != nil {
		return err
	}
	for _, p := range payload.Pools {
		fmt.Fprintln(s.out, p.Name)
	}
	return nil
}

func (s *session) info(ctx context.Context, identifier string) error {
	reply, err := s.send(ctx, &stanza.Archipel{Action: "poolinfo", Identifier: identifier})
	if err != nil {
		return err
	}
	var payload struct {
		Info    stanza.Info    `xml:"info"`
		Volumes stanza.Volumes `xml:"volumes"`
	}
	if err := reply.DecodePayload(&payload); err != nil {
		return err
	}

	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "State:\t%s\n", payload.Info.StateName)
	fmt.Fprintf(w, "Capacity:\t%d\n", payload.Info.Capacity)
	fmt.Fprintf(w, "Allocation:\t%d\n", payload.Info.Allocation)
	fmt.Fprintf(w, "Available:\t%d\n", payload.Info.Available)
	fmt.Fprintf(w, "Persistent:\t%t\n", payload.Info.Persistent)
	fmt.Fprintf(w, "Autostart:\t%t\n", payload.Info.Autostart)
	fmt.Fprintf(w, "Volumes:\t%d\n", payload.Info.VolumeCount)
	for _, name := range payload.Volumes.Names() {
		fmt.Fprintf(w, "\t%s\n", name)
	}
	return w.Flush()
}

func (s *session) volumes(ctx context.Context, identifier string) error {
	reply, err := s.send(ctx, &stanza.Archipel{Action: "poolvolumes", Identifier: identifier})
	if err != nil {
		return err
	}
	var payload struct {
		Volumes stanza.Volumes `xml:"volumes"`
	}
	if err := reply.DecodePayload(&payload); err != nil {
		return err
	}
	for _, name := range payload.Volumes.Names() {
		fmt.Fprintln(s.out, name)
	}
	return nil
}

func (s *session) describe(ctx context.Context, identifier string) error {
	reply, err := s.send(ctx, &stanza.Archipel{Action: "pooldescription", Identifier: identifier})
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(reply.Query.Inner))
	return nil
}

func (s *session) define(ctx context.Context, descriptor []byte, build bool) error {
	reply, err := s.send(ctx, &stanza.Archipel{
		Action: "pooldefine",
		Build:  strconv.FormatBool(build),
		Inner:  descriptor,
	})
	if err != nil {
		return err
	}
	var payload struct {
		Pool stanza.DefinedPool `xml:"pool"`
	}
	if err := reply.DecodePayload(&payload); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "defined %s (%s)\n", payload.Pool.Name, payload.Pool.UUID)
	return nil
}

func (s *session) undefine(ctx context.Context, identifier string, deleteContents bool) error {
	reply, err := s.send(ctx, &stanza.Archipel{
		Action:     "poolundefine",
		Identifier: identifier,
		Delete:     strconv.FormatBool(deleteContents),
	})
	if err != nil {
		return err
	}
	var payload struct {
		Warnings []stanza.Warning `xml:"warning"`
	}
	if err := reply.DecodePayload(&payload); err != nil {
		return err
	}
	for _, w := range payload.Warnings {
		fmt.Fprintf(s.out, "warning: %s\n", w.Text)
	}
	fmt.Fprintf(s.out, "undefined %s\n", identifier)
	return nil
}

// simple 发送没有响应内容的请求
func (s *session) simple(ctx context.Context, archipel *stanza.Archipel, done string) error {
	if _, err := s.send(ctx, archipel); err != nil {
		return err
	}
	fmt.Fprintln(s.out, done)
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List storage pools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.list(ctx)
			})
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info NAME|UUID",
		Short: "Show state, capacity and volumes of a storage pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.info(ctx, args[0])
			})
		},
	}
}

func newVolumesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volumes NAME|UUID",
		Short: "List volumes of a storage pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.volumes(ctx, args[0])
			})
		},
	}
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start NAME|UUID",
		Short: "Start an inactive storage pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.simple(ctx, &stanza.Archipel{Action: "poolcreate", Identifier: args[0]}, "started "+args[0])
			})
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop NAME|UUID",
		Short: "Stop an active storage pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.simple(ctx, &stanza.Archipel{Action: "pooldestroy", Identifier: args[0]}, "stopped "+args[0])
			})
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe NAME|UUID",
		Short: "Print the XML definition of a storage pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.describe(ctx, args[0])
			})
		},
	}
}

func newDefineCmd() *cobra.Command {
	var build bool

	cmd := &cobra.Command{
		Use:   "define FILE",
		Short: "Define a storage pool from an XML file (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				descriptor []byte
				err        error
			)
			if args[0] == "-" {
				descriptor, err = io.ReadAll(cmd.InOrStdin())
			} else {
				descriptor, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read pool definition: %w", err)
			}
			if _, err := libvirt.ParseStoragePoolXML(string(descriptor)); err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.define(ctx, descriptor, build)
			})
		},
	}
	cmd.Flags().BoolVar(&build, "build", false, "build the pool after defining it")
	return cmd
}

func newUndefineCmd() *cobra.Command {
	var deleteContents bool

	cmd := &cobra.Command{
		Use:   "undefine NAME|UUID",
		Short: "Undefine a storage pool, stopping it first if active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.undefine(ctx, args[0], deleteContents)
			})
		},
	}
	cmd.Flags().BoolVar(&deleteContents, "delete", false, "delete the pool contents on disk before undefining")
	return cmd
}

func newAutostartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autostart NAME|UUID true|false",
		Short: "Set whether a storage pool starts with the host",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := stanza.ParseFlag("autostart", args[1], true)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, s *session) error {
				return s.simple(ctx, &stanza.Archipel{
					Action:     "poolsetautostart",
					Identifier: args[0],
					Autostart:  strconv.FormatBool(enabled),
				}, fmt.Sprintf("autostart of %s set to %t", args[0], enabled))
			})
		},
	}
}
