package insights

// assembleRows converts a finalized buffer into the emitted row sequence, in
// buffer insertion order, attaching the date and the item identity columns
// (<type>Id, <type>Name). An empty buffer yields no rows at all.
func assembleRows(buf *buffer, item Item, itemType ItemType) []Row {
	if len(buf.order) == 0 {
		return nil
	}

	rows := make([]Row, 0, len(buf.order))
	for _, key := range buf.order {
		row := buf.rows[key]
		row["date"] = key.date
		row[string(itemType)+"Id"] = item.ID
		row[string(itemType)+"Name"] = item.Name
		rows = append(rows, row)
	}
	return rows
}
