// Package navigator は Global News Navigator のHTTPサーバーを組み立てる。
//
// 設定に従ってストアを開き、新聞・認証・通知の各コンポーネントを接続して
// 1つのGinルーターに登録する。新聞の登録イベントは通知レコーダーが受け取り、
// 購読者ごとの通知を保存する。
package navigator
