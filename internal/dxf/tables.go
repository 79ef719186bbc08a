package dxf

import "github.com/pid-digitizer/backend/internal/models"

const (
	modelSpace = "*Model_Space"
	paperSpace = "*Paper_Space"
)

// tableWriter writes one symbol table and hands out the owner handle for its entries.
type tableWriter struct {
	w      *writer
	handle string
}

func beginTable(w *writer, name string, count int) *tableWriter {
	h := w.handle()
	w.str(0, "TABLE")
	w.str(2, name)
	w.str(5, h)
	w.str(330, "0")
	w.str(100, "AcDbSymbolTable")
	w.int(70, count)
	return &tableWriter{w: w, handle: h}
}

// record starts a table entry and returns its handle.
func (t *tableWriter) record(typ, subclass string) string {
	h := t.w.handle()
	t.w.str(0, typ)
	if typ == "DIMSTYLE" {
		t.w.str(105, h)
	} else {
		t.w.str(5, h)
	}
	t.w.str(330, t.handle)
	t.w.str(100, "AcDbSymbolTableRecord")
	t.w.str(100, subclass)
	return h
}

func (t *tableWriter) end() {
	t.w.str(0, "ENDTAB")
}

// writeTables writes the TABLES section and returns block record handles by block name.
func (d *Document) writeTables(w *writer) map[string]string {
	w.str(0, "SECTION")
	w.str(2, "TABLES")

	d.writeViewports(w)
	d.writeLinetypes(w)
	d.writeLayers(w)
	d.writeStyles(w)
	beginTable(w, "VIEW", 0).end()
	beginTable(w, "UCS", 0).end()

	t := beginTable(w, "APPID", 1)
	t.record("APPID", "AcDbRegAppTableRecord")
	w.str(2, "ACAD")
	w.int(70, 0)
	t.end()

	t = beginTable(w, "DIMSTYLE", 1)
	w.str(100, "AcDbDimStyleTable")
	w.int(71, 0)
	t.record("DIMSTYLE", "AcDbDimStyleTableRecord")
	w.str(2, StandardStyle)
	w.int(70, 0)
	t.end()

	records := d.writeBlockRecords(w)

	w.str(0, "ENDSEC")
	return records
}

func (d *Document) writeViewports(w *writer) {
	t := beginTable(w, "VPORT", 1)
	t.record("VPORT", "AcDbViewportTableRecord")
	w.str(2, "*ACTIVE")
	w.int(70, 0)
	w.float(10, 0)
	w.float(20, 0)
	w.float(11, 1)
	w.float(21, 1)
	center := d.extMin.Midpoint(d.extMax)
	w.float(12, center.X)
	w.float(22, center.Y)
	height := d.extMax.Y - d.extMin.Y
	if height <= 0 {
		height = 1
	}
	w.float(40, height)
	w.float(41, 1.5)
	t.end()
}

func (d *Document) writeLinetypes(w *writer) {
	t := beginTable(w, "LTYPE", len(d.linetypes)+2)
	for _, name := range []string{"ByBlock", "ByLayer"} {
		t.record("LTYPE", "AcDbLinetypeTableRecord")
		w.str(2, name)
		w.int(70, 0)
		w.str(3, "")
		w.int(72, 65)
		w.int(73, 0)
		w.float(40, 0)
	}
	for _, lt := range d.linetypes {
		t.record("LTYPE", "AcDbLinetypeTableRecord")
		w.str(2, lt.Name)
		w.int(70, 0)
		w.str(3, lt.Description)
		w.int(72, 65)
		w.int(73, len(lt.Pattern))
		w.float(40, lt.patternLength())
		for _, v := range lt.Pattern {
			w.float(49, v)
			w.int(74, 0)
		}
	}
	t.end()
}

func (d *Document) writeLayers(w *writer) {
	t := beginTable(w, "LAYER", len(d.layers))
	for _, l := range d.layers {
		t.record("LAYER", "AcDbLayerTableRecord")
		w.str(2, l.Name)
		w.int(70, 0)
		w.int(62, l.Color)
		w.str(6, l.Linetype)
		w.int(370, l.Lineweight)
	}
	t.end()
}

func (d *Document) writeStyles(w *writer) {
	t := beginTable(w, "STYLE", len(d.styles))
	for _, s := range d.styles {
		t.record("STYLE", "AcDbTextStyleTableRecord")
		w.str(2, s.Name)
		w.int(70, 0)
		w.float(40, s.Height)
		w.float(41, 1)
		w.float(50, 0)
		w.int(71, 0)
		w.float(42, 2.5)
		w.str(3, s.Font)
		w.str(4, "")
	}
	t.end()
}

func (d *Document) writeBlockRecords(w *writer) map[string]string {
	names := d.blockRecordNames()
	records := make(map[string]string, len(names))

	t := beginTable(w, "BLOCK_RECORD", len(names))
	for _, name := range names {
		records[name] = t.record("BLOCK_RECORD", "AcDbBlockTableRecord")
		w.str(2, name)
		w.int(70, int(d.units))
	}
	t.end()
	return records
}

func (d *Document) blockRecordNames() []string {
	names := make([]string, 0, len(d.blocks)+2)
	names = append(names, modelSpace, paperSpace)
	for _, b := range d.blocks {
		names = append(names, b.name)
	}
	return names
}

func (d *Document) writeBlocks(w *writer, records map[string]string) {
	w.str(0, "SECTION")
	w.str(2, "BLOCKS")

	writeBlock(w, modelSpace, records[modelSpace], nil, false)
	writeBlock(w, paperSpace, records[paperSpace], nil, true)
	for _, b := range d.blocks {
		writeBlock(w, b.name, records[b.name], b.entities, false)
	}

	w.str(0, "ENDSEC")
}

func writeBlock(w *writer, name, record string, entities []Entity, paper bool) {
	w.str(0, "BLOCK")
	w.str(5, w.handle())
	w.str(330, record)
	w.str(100, "AcDbEntity")
	if paper {
		w.int(67, 1)
	}
	w.str(8, DefaultLayer)
	w.str(100, "AcDbBlockBegin")
	w.str(2, name)
	w.int(70, 0)
	w.point(10, models.Point{})
	w.str(3, name)
	w.str(1, "")

	for _, e := range entities {
		e.write(w, record)
	}

	w.str(0, "ENDBLK")
	w.str(5, w.handle())
	w.str(330, record)
	w.str(100, "AcDbEntity")
	if paper {
		w.int(67, 1)
	}
	w.str(8, DefaultLayer)
	w.str(100, "AcDbBlockEnd")
}

func (d *Document) writeObjects(w *writer) {
	root := w.handle()
	groups := w.handle()

	w.str(0, "SECTION")
	w.str(2, "OBJECTS")

	w.str(0, "DICTIONARY")
	w.str(5, root)
	w.str(330, "0")
	w.str(100, "AcDbDictionary")
	w.int(281, 1)
	w.str(3, "ACAD_GROUP")
	w.str(350, groups)

	w.str(0, "DICTIONARY")
	w.str(5, groups)
	w.str(330, root)
	w.str(100, "AcDbDictionary")
	w.int(281, 1)

	w.str(0, "ENDSEC")
}
