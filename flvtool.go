// SPDX-License-Identifier: GPL-2.0-or-later

// Package flvkit command line tool for inspecting and rewriting flv files.
package flvkit

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"flvkit/pkg/config"
	"flvkit/pkg/flv"
	"flvkit/pkg/flv/metayaml"
	"flvkit/pkg/log"
)

// Command errors.
var (
	ErrMissingCommand = errors.New("missing command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgs           = errors.New("wrong number of arguments")
	ErrNoMetadata     = errors.New("no onMetaData tag")
)

const usage = `usage: flvtool [-env env.yaml] <command> [args]

commands:
  info FILE                 print header and tags
  meta FILE                 print metadata as yaml
  setmeta FILE META OUT     replace metadata and write OUT
  check FILE                validate sizes and header flags
  copy FILE OUT             decode and re-encode FILE to OUT
`

// Run .
func Run() error {
	envFlag := flag.String("env", "", "path to env.yaml")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return nil
	}

	return run(*envFlag, flag.Args(), os.Stdout, os.Stderr)
}

func run(envPath string, args []string, stdout, stderr io.Writer) error {
	env, err := config.ReadEnv(envPath)
	if err != nil {
		return fmt.Errorf("could not get environment config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	logger := log.NewLogger(wg)
	logger.Start(ctx)
	logger.LogToWriter(stderr, env.Level())

	// Flush logs before returning.
	defer func() {
		cancel()
		wg.Wait()
	}()

	if env.LogDB != "" {
		logDB := log.NewDB(env.LogDB, wg)
		if err := logDB.Init(ctx); err != nil {
			return fmt.Errorf("could not initialize log database: %w", err)
		}
		logDB.SaveLogs(logger)
	}

	a := &app{
		env:    env,
		logger: logger,
		out:    stdout,
	}
	if err := a.runCommand(args); err != nil {
		logger.Error().Src("app").Msg(err.Error())
		return err
	}
	return nil
}

type app struct {
	env    *config.Env
	logger *log.Logger
	out    io.Writer
}

type command struct {
	nArgs int
	run   func(a *app, args []string) error
}

var commands = map[string]command{
	"info":    {1, (*app).info},
	"meta":    {1, (*app).meta},
	"setmeta": {3, (*app).setMeta},
	"check":   {1, (*app).check},
	"copy":    {2, (*app).copyFile},
}

func (a *app) runCommand(args []string) error {
	if len(args) == 0 {
		return ErrMissingCommand
	}
	name, args := args[0], args[1:]

	cmd, exist := commands[name]
	if !exist {
		return fmt.Errorf("%w: %v", ErrUnknownCommand, name)
	}
	if len(args) != cmd.nArgs {
		return fmt.Errorf("%v: %w: got %d, want %d", name, ErrArgs, len(args), cmd.nArgs)
	}
	return cmd.run(a, args)
}

func (a *app) info(args []string) error {
	path := args[0]

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	r, header, err := flv.NewReader(file)
	if err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}
	fmt.Fprintf(a.out, "header: version=%d audio=%t video=%t\n",
		header.Version, header.HasAudio(), header.HasVideo())

	var count int
	for {
		tag, err := r.ReadTag()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%v: %w", path, err)
		}
		fmt.Fprintf(a.out, "%d %s timestamp=%d size=%d%s\n",
			count, tag.Type(), tag.Timestamp, tag.DataSize, describe(tag.Data))
		count++
	}

	a.logger.Debug().Src("info").File(path).Msgf("%d tags", count)
	return nil
}

func describe(data flv.TagData) string {
	switch data := data.(type) {
	case *flv.VideoData:
		s := fmt.Sprintf(" codec=%d", data.CodecID)
		if data.IsKeyframe() {
			s += " keyframe"
		}
		return s
	case *flv.AudioData:
		return fmt.Sprintf(" format=%d", data.SoundFormat)
	case *flv.ScriptData:
		return " name=" + data.Name.Text()
	}
	return ""
}

func (a *app) meta(args []string) error {
	path := args[0]

	f, err := decodeFile(path)
	if err != nil {
		return err
	}

	script, exist := f.Metadata()
	if !exist {
		return fmt.Errorf("%v: %w", path, ErrNoMetadata)
	}

	raw, err := metayaml.Marshal(script.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = a.out.Write(raw)
	return err
}

func (a *app) setMeta(args []string) error {
	path, metaPath, outPath := args[0], args[1], args[2]

	if err := a.env.CheckOutput(outPath); err != nil {
		return err
	}

	f, err := decodeFile(path)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return err
	}
	metadata, err := metayaml.Unmarshal(raw)
	if err != nil {
		return fmt.Errorf("%v: %w", metaPath, err)
	}

	if err := f.SetMetadata(metadata); err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}

	if err := encodeFile(outPath, f); err != nil {
		return err
	}

	a.logger.Info().Src("setmeta").File(outPath).
		Msgf("wrote %d properties", metadata.Len())
	return nil
}

func (a *app) check(args []string) error {
	path := args[0]

	f, err := decodeFile(path)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}

	fmt.Fprintf(a.out, "%v: ok, %d tags, duration %v\n", path, len(f.Tags), f.Duration())
	return nil
}

func (a *app) copyFile(args []string) error {
	path, outPath := args[0], args[1]

	if err := a.env.CheckOutput(outPath); err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	r, header, err := flv.NewReader(in)
	if err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}

	out, err := createOutput(outPath)
	if err != nil {
		return err
	}
	defer out.discard()

	w, err := flv.NewWriter(out, *header)
	if err != nil {
		return err
	}

	var count int
	for {
		tag, err := r.ReadTag()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%v: %w", path, err)
		}
		if err := w.WriteTag(tag); err != nil {
			return fmt.Errorf("%v: %w", outPath, err)
		}
		count++
	}

	if err := out.commit(); err != nil {
		return err
	}

	a.logger.Info().Src("copy").File(outPath).Msgf("copied %d tags", count)
	return nil
}

func decodeFile(path string) (*flv.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := flv.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return f, nil
}

func encodeFile(path string, f *flv.File) error {
	out, err := createOutput(path)
	if err != nil {
		return err
	}
	defer out.discard()

	if err := f.Encode(out); err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}
	return out.commit()
}

// output is a temporary file in the directory of path that replaces
// path on commit. The input file is left untouched until then, so
// it can also be the output.
type output struct {
	*os.File
	path      string
	committed bool
}

func createOutput(path string) (*output, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	file, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return &output{File: file, path: path}, nil
}

func (o *output) commit() error {
	if err := o.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(o.Name(), o.path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	o.committed = true
	return nil
}

// discard removes the temporary file unless it was committed.
func (o *output) discard() {
	if o.committed {
		return
	}
	o.Close()
	os.Remove(o.Name())
}
