package domain

// SheetFile 描述一次扫描得到的电子表格文件（只做 stat，不读内容）。
//
// 不变量：
// - AbsPath 必须是 clean + absolute
// - 扫描阶段只做 stat，不读文件内容
type SheetFile struct {
	AbsPath string
	Name    string // 含扩展名，写入报告的 Filename 列
	Base    string // filename without ext
	Ext     string // ".xlsx"
	Size    int64
	ModUnix int64
}
