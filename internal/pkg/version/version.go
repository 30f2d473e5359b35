// Package version 카이도키 내비 실행 파일의 빌드 메타데이터를 제공합니다.
//
// 릴리스 빌드는 -ldflags "-X" 로 값을 주입하며, 주입되지 않은 값은
// 실행 파일에 기록된 VCS 정보(debug.ReadBuildInfo)로 보강합니다.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const unknown = "unknown"

// 링커 플래그로 주입되는 값입니다. 직접 참조하지 말고 Get()을 사용합니다.
var (
	appVersion    = ""
	gitCommitHash = ""
	gitTreeState  = ""
	buildDate     = ""
)

var readBuildInfo = debug.ReadBuildInfo

var current = sync.OnceValue(func() Info {
	return resolve(Info{
		Version:    strings.TrimSpace(appVersion),
		Commit:     strings.TrimSpace(gitCommitHash),
		BuildDate:  strings.TrimSpace(buildDate),
		DirtyBuild: strings.EqualFold(strings.TrimSpace(gitTreeState), "dirty"),
	})
})

// Info 버전 명령과 /version 응답에 노출되는 빌드 정보입니다.
type Info struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	BuildDate  string `json:"build_date"`
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	DirtyBuild bool   `json:"dirty_build"`
}

// Get 프로세스 수명 동안 한 번만 계산된 빌드 정보를 반환합니다.
func Get() Info {
	return current()
}

// resolve 비어 있는 필드를 런타임 값과 VCS 설정으로 채웁니다.
func resolve(bi Info) Info {
	bi.GoVersion = runtime.Version()
	bi.OS = runtime.GOOS
	bi.Arch = runtime.GOARCH

	if meta, ok := readBuildInfo(); ok {
		for _, s := range meta.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.BuildDate == "" {
					bi.BuildDate = s.Value
				}
			case "vcs.modified":
				bi.DirtyBuild = bi.DirtyBuild || s.Value == "true"
			}
		}
		if bi.Version == "" && meta.Main.Version != "" && meta.Main.Version != "(devel)" {
			bi.Version = meta.Main.Version
		}
	}

	if bi.Version == "" {
		bi.Version = unknown
	}
	if bi.Commit == "" {
		bi.Commit = unknown
	}
	return bi
}

// String "v1.2.0+dirty (commit: abc1234, date: ..., go1.24.0 linux/amd64)" 형태로 요약합니다.
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = unknown
	}
	if i.DirtyBuild {
		v += "+dirty"
	}

	var details []string
	if i.Commit != "" && i.Commit != unknown {
		c := i.Commit
		if len(c) > 7 {
			c = c[:7]
		}
		details = append(details, "commit: "+c)
	}
	if i.BuildDate != "" {
		details = append(details, "date: "+i.BuildDate)
	}
	if i.GoVersion != "" {
		details = append(details, fmt.Sprintf("%s %s/%s", i.GoVersion, i.OS, i.Arch))
	}

	if len(details) == 0 {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
}
