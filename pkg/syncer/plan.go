package syncer

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Action is a planned remote operation.
type Action string

const (
	ActionUpload Action = "upload"
	ActionDelete Action = "delete"
	ActionSkip   Action = "skip"
)

// Item is one entry of a sync plan.
type Item struct {
	Action    Action
	LocalPath string // absolute path of the staged file, empty for deletes
	Key       string // full object key including prefix
	Size      int64
	Reason    string
}

// LocalFile describes a staged file relative to the staging root.
type LocalFile struct {
	RelPath string
	AbsPath string
	Size    int64
	ModTime time.Time
}

// RemoteFile describes an object under the target prefix, keyed relative
// to that prefix.
type RemoteFile struct {
	RelKey  string
	Size    int64
	ModTime time.Time
}

// BuildPlan compares the staged tree against the remote listing and returns
// the operations needed to make the remote side mirror the local one. An
// object is uploaded when it is new, its size differs, or the local copy is
// newer. Remote objects absent locally become deletes only when
// deleteEnabled is set.
//
// The result is sorted by action then key so plans are deterministic.
func BuildPlan(local []LocalFile, remote []RemoteFile, keyPrefix string, deleteEnabled bool) []Item {
	remoteMap := make(map[string]RemoteFile, len(remote))
	for _, obj := range remote {
		remoteMap[obj.RelKey] = obj
	}

	localMap := make(map[string]LocalFile, len(local))
	for _, file := range local {
		localMap[toKey(file.RelPath)] = file
	}

	items := []Item{}

	for relKey, file := range localMap {
		key := keyPrefix + relKey

		obj, exists := remoteMap[relKey]
		switch {
		case !exists:
			items = append(items, Item{
				Action:    ActionUpload,
				LocalPath: file.AbsPath,
				Key:       key,
				Size:      file.Size,
				Reason:    "new file",
			})
		case file.Size != obj.Size:
			items = append(items, Item{
				Action:    ActionUpload,
				LocalPath: file.AbsPath,
				Key:       key,
				Size:      file.Size,
				Reason:    "size differs",
			})
		case file.ModTime.After(obj.ModTime):
			items = append(items, Item{
				Action:    ActionUpload,
				LocalPath: file.AbsPath,
				Key:       key,
				Size:      file.Size,
				Reason:    "modified locally",
			})
		default:
			items = append(items, Item{
				Action:    ActionSkip,
				LocalPath: file.AbsPath,
				Key:       key,
				Size:      file.Size,
				Reason:    "up to date",
			})
		}
	}

	if deleteEnabled {
		for relKey, obj := range remoteMap {
			if _, exists := localMap[relKey]; !exists {
				items = append(items, Item{
					Action: ActionDelete,
					Key:    keyPrefix + relKey,
					Size:   obj.Size,
					Reason: "absent locally",
				})
			}
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Action != items[j].Action {
			return items[i].Action < items[j].Action
		}
		return items[i].Key < items[j].Key
	})

	return items
}

// NormalizePrefix collapses any run of trailing slashes and reattaches
// exactly one, so "builds/123", "builds/123/" and "builds/123//" all map to
// "builds/123/". The empty prefix stays empty: the bucket root needs no
// separator.
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func toKey(relPath string) string {
	return filepath.ToSlash(relPath)
}
