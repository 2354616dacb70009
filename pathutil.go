package jail_bot

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// defaultDataDir sqlite 文件所在目录
// Priority:
//  1. explicit configured dir
//  2. <exeDir>/data
//  3. os.TempDir()/jailbot (最后兜底)
//
// Note: 编译后的二进制里拿不到源码目录，用可执行文件所在目录作为应用根目录。
func defaultDataDir(configured string) string {
	if strings.TrimSpace(configured) != "" {
		ensureDirBestEffort(configured)
		return configured
	}

	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "data")
		if ensureDirBestEffort(dir) {
			return dir
		}
	}

	dir := filepath.Join(os.TempDir(), "jailbot")
	ensureDirBestEffort(dir)
	return dir
}

func ensureDirBestEffort(dir string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("create data dir failed: %v (dir=%s)", err, dir)
		return false
	}
	return true
}
