// Package newspaper は国別の新聞レコードの登録・更新・削除・参照を提供する。
//
// 新聞を登録すると NewspaperCreated イベントを発行し、
// 購読者への通知の記録は EventHandler に委ねる。
package newspaper
