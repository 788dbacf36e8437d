// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korugui/utility/kar"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil {
		currentUserName = u.Name
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the given archive")
	compress        = flag.String("c", "", "Compress the given file/folder")
	dstFile         = flag.String("f", "out.kar", "Destination file, or directory when extracting")
	silent          = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	if *extract != "" && *compress != "" {
		log.Fatal("only one operation at a time")
	}

	switch {
	case *extract != "":
		if err := extractFiles(); err != nil {
			log.WithError(err).Fatal("Extract failed")
		}
	case *compress != "":
		if err := compressFiles(); err != nil {
			log.WithError(err).Fatal("Compress failed")
		}
	default:
		flag.PrintDefaults()
	}
}

func compressFiles() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	err := filepath.Walk(*compress, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		filesToCompress = append(filesToCompress, path)
		return nil
	})
	if err != nil {
		return err
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	karBuilder := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})

	for _, ftc := range filesToCompress {
		rel, err := filepath.Rel(*compress, ftc)
		if err != nil || rel == "." {
			rel = filepath.Base(ftc)
		}
		if err := addFile(karBuilder, filepath.ToSlash(rel), ftc); err != nil {
			return err
		}
		log.WithField("file", rel).Info("Compressed")
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	if _, err := karBuilder.WriteTo(dst); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func addFile(b *kar.Builder, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Add(name, f)
}

func extractFiles() error {
	archive, err := kar.OpenFile(*extract)
	if err != nil {
		return err
	}
	defer archive.Close()

	dir := *dstFile
	if dir == "out.kar" {
		dir = "."
	}
	header := archive.Header()
	log.WithFields(log.Fields{
		"author":  header.Author,
		"version": header.Version,
		"created": time.Unix(header.DateCreated, 0),
	}).Info("Extracting")

	for _, name := range archive.Names() {
		target := filepath.Join(dir, filepath.FromSlash(name))
		if rel, err := filepath.Rel(dir, target); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes destination", name)
		}
		data, err := archive.ReadAll(name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := ioutil.WriteFile(target, data, 0644); err != nil {
			return err
		}
		log.WithField("file", name).Info("Extracted")
	}
	return nil
}
